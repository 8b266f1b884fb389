package models

import (
	"encoding/json"
	"fmt"

	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
	"github.com/ekaya-inc/fraudwatch/pkg/jsonutil"
)

// Model names reported with a prediction.
const (
	PredictionModelXGBoost   = "XGBoost v1"
	PredictionModelHeuristic = "Heuristic Fallback"
)

// PredictionRequest holds the transaction features scored by the fraud model.
// Flags are 0/1; the dashboard may send them as booleans or numeric strings.
type PredictionRequest struct {
	Amount            float64 `json:"amount"`
	HourOfDay         float64 `json:"hour_of_day"`
	DayOfWeek         float64 `json:"day_of_week"`
	IsWeekend         float64 `json:"is_weekend"`
	IsNight           float64 `json:"is_night"`
	TxCount1h         float64 `json:"tx_count_1h"`
	TxCount24h        float64 `json:"tx_count_24h"`
	AmountVsAvgRatio  float64 `json:"amount_vs_avg_ratio"`
	CustomerRiskScore float64 `json:"customer_risk_score"`
	MerchantRiskScore float64 `json:"merchant_risk_score"`
	LocationChanged   float64 `json:"location_changed"`
	DeviceChanged     float64 `json:"device_changed"`
	HighVelocity1h    float64 `json:"high_velocity_1h"`
	IsInternational   float64 `json:"is_international"`
}

// UnmarshalJSON accepts numbers, numeric strings and booleans for every
// feature. amount is required; any other missing feature is zero.
func (r *PredictionRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := []struct {
		name string
		dst  *float64
	}{
		{"amount", &r.Amount},
		{"hour_of_day", &r.HourOfDay},
		{"day_of_week", &r.DayOfWeek},
		{"is_weekend", &r.IsWeekend},
		{"is_night", &r.IsNight},
		{"tx_count_1h", &r.TxCount1h},
		{"tx_count_24h", &r.TxCount24h},
		{"amount_vs_avg_ratio", &r.AmountVsAvgRatio},
		{"customer_risk_score", &r.CustomerRiskScore},
		{"merchant_risk_score", &r.MerchantRiskScore},
		{"location_changed", &r.LocationChanged},
		{"device_changed", &r.DeviceChanged},
		{"high_velocity_1h", &r.HighVelocity1h},
		{"is_international", &r.IsInternational},
	}

	for _, f := range fields {
		v, present, err := jsonutil.FlexibleFloat(raw[f.name])
		if err != nil {
			return apperrors.NewValidationError(f.name, err.Error())
		}
		if f.name == "amount" && !present {
			return apperrors.NewValidationError("amount", "is required")
		}
		*f.dst = v
	}
	return nil
}

// ModelArgs returns the features in the order the warehouse model expects.
func (r *PredictionRequest) ModelArgs() []any {
	return []any{
		r.Amount,
		int64(r.HourOfDay),
		int64(r.DayOfWeek),
		int64(r.IsWeekend),
		int64(r.IsNight),
		int64(r.TxCount1h),
		int64(r.TxCount24h),
		r.AmountVsAvgRatio,
		r.CustomerRiskScore,
		int64(r.MerchantRiskScore),
		int64(r.LocationChanged),
		int64(r.DeviceChanged),
		int64(r.HighVelocity1h),
		int64(r.IsInternational),
	}
}

// PredictionResponse is the fraud verdict for one transaction.
// RiskScore is only set by the heuristic fallback.
type PredictionResponse struct {
	Prediction int     `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model"`
	RiskScore  *int    `json:"riskScore,omitempty"`
}

func (p PredictionResponse) String() string {
	return fmt.Sprintf("%s: prediction=%d confidence=%.2f", p.Model, p.Prediction, p.Confidence)
}
