package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/logging"
	"github.com/ekaya-inc/fraudwatch/pkg/models"
)

// HeuristicThreshold is the fallback risk score at which a transaction is flagged.
const HeuristicThreshold = 40

// Confidence values reported with each verdict.
const (
	modelFraudConfidence = 0.85
	modelCleanConfidence = 0.92
	heuristicConfidence  = 0.7
)

// PredictionService scores a single transaction for fraud.
type PredictionService interface {
	// Predict asks the warehouse model for a verdict and falls back to the
	// fixed-weight heuristic when the model call fails or returns nothing usable.
	Predict(ctx context.Context, req *models.PredictionRequest) (*models.PredictionResponse, error)
}

type predictionService struct {
	querier   warehouse.Querier
	statement string
	logger    *zap.Logger
}

// NewPredictionService creates a prediction service for the model registered
// under qualifiedSchema (DATABASE.SCHEMA).
func NewPredictionService(querier warehouse.Querier, qualifiedSchema string, logger *zap.Logger) PredictionService {
	return &predictionService{
		querier:   querier,
		statement: PredictStatement(qualifiedSchema),
		logger:    logger.Named("prediction-service"),
	}
}

var _ PredictionService = (*predictionService)(nil)

// modelInputCasts are the 14 request features, in model order.
var modelInputCasts = []string{
	"FLOAT", "INTEGER", "INTEGER", "INTEGER", "INTEGER", "INTEGER", "INTEGER",
	"FLOAT", "FLOAT", "INTEGER", "INTEGER", "INTEGER", "INTEGER", "INTEGER",
}

// modelFixedArgs fill the model's remaining 13 features, which the dashboard
// does not collect.
var modelFixedArgs = []string{
	"0.0::FLOAT", "100::INTEGER", "10::INTEGER", "1000.0::FLOAT", "300.0::FLOAT",
	"5::INTEGER", "0::INTEGER", "3::INTEGER", "0::INTEGER", "2::INTEGER",
	"2::INTEGER", "2::INTEGER", "365::INTEGER",
}

// PredictStatement builds the model invocation with bind placeholders for
// the request features.
func PredictStatement(qualifiedSchema string) string {
	args := make([]string, 0, len(modelInputCasts)+len(modelFixedArgs))
	for _, cast := range modelInputCasts {
		args = append(args, "?::"+cast)
	}
	args = append(args, modelFixedArgs...)

	return fmt.Sprintf("SELECT %s.FRAUD_DETECTION_MODEL!PREDICT(%s) AS PREDICTION",
		qualifiedSchema, strings.Join(args, ", "))
}

func (s *predictionService) Predict(ctx context.Context, req *models.PredictionRequest) (*models.PredictionResponse, error) {
	result, err := s.querier.Query(ctx, s.statement, req.ModelArgs()...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("Model prediction failed, using heuristic",
			zap.String("error", logging.SanitizeError(err)))
		return HeuristicPrediction(req), nil
	}

	row, ok := result.First()
	if !ok {
		s.logger.Warn("Model returned no rows, using heuristic")
		return HeuristicPrediction(req), nil
	}

	v, _ := rowValue(row, "PREDICTION")
	prediction, ok := parsePrediction(v)
	if !ok {
		s.logger.Warn("Unrecognized model output, using heuristic", zap.Any("prediction", v))
		return HeuristicPrediction(req), nil
	}

	confidence := modelCleanConfidence
	if prediction == 1 {
		confidence = modelFraudConfidence
	}
	return &models.PredictionResponse{
		Prediction: prediction,
		Confidence: confidence,
		Model:      models.PredictionModelXGBoost,
	}, nil
}

// parsePrediction reads the model verdict from a scalar or from the object
// the model registry returns ({"output_feature_0": 1}).
func parsePrediction(v any) (int, bool) {
	switch p := v.(type) {
	case int64:
		return int(p), true
	case float64:
		return int(p), true
	case bool:
		if p {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(p)
		if strings.HasPrefix(s, "{") {
			var obj map[string]any
			if err := json.Unmarshal([]byte(s), &obj); err != nil {
				return 0, false
			}
			for _, key := range []string{"output_feature_0", "PREDICTION", "prediction"} {
				if n, ok := obj[key].(float64); ok {
					return int(n), true
				}
			}
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return int(f), true
	}
	return 0, false
}

// HeuristicScore is the fixed-weight fallback risk score.
func HeuristicScore(req *models.PredictionRequest) int {
	score := 0
	if req.Amount > 2000 {
		score += 30
	}
	if req.CustomerRiskScore > 70 {
		score += 25
	}
	if req.TxCount1h > 3 {
		score += 15
	}
	if req.AmountVsAvgRatio > 3 {
		score += 15
	}
	if req.LocationChanged != 0 {
		score += 10
	}
	if req.DeviceChanged != 0 {
		score += 10
	}
	if req.IsInternational != 0 {
		score += 5
	}
	if req.IsNight != 0 {
		score += 5
	}
	if req.MerchantRiskScore == 3 {
		score += 10
	}
	return score
}

// HeuristicPrediction flags the transaction when HeuristicScore reaches
// HeuristicThreshold.
func HeuristicPrediction(req *models.PredictionRequest) *models.PredictionResponse {
	score := HeuristicScore(req)
	prediction := 0
	if score >= HeuristicThreshold {
		prediction = 1
	}
	return &models.PredictionResponse{
		Prediction: prediction,
		Confidence: heuristicConfidence,
		Model:      models.PredictionModelHeuristic,
		RiskScore:  &score,
	}
}
