package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/models"
)

func decodePrediction(t *testing.T, body string) *models.PredictionRequest {
	t.Helper()
	var req models.PredictionRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestPredictStatement(t *testing.T) {
	stmt := PredictStatement(testSchema)

	assert.True(t, strings.HasPrefix(stmt, "SELECT MG_COCO.FRAUD_DETECTION.FRAUD_DETECTION_MODEL!PREDICT(?::FLOAT, ?::INTEGER"))
	assert.True(t, strings.HasSuffix(stmt, "2::INTEGER, 365::INTEGER) AS PREDICTION"))
	assert.Equal(t, 14, strings.Count(stmt, "?"))
	assert.Equal(t, 27, strings.Count(stmt, "::"))
}

func TestPredict_ModelVerdict(t *testing.T) {
	tests := []struct {
		name           string
		value          any
		wantPrediction int
		wantConfidence float64
	}{
		{"fraud", int64(1), 1, 0.85},
		{"clean", int64(0), 0, 0.92},
		{"registry object", `{"output_feature_0": 1}`, 1, 0.85},
		{"numeric string", "0", 0, 0.92},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := returning(resultOf([]string{"PREDICTION"}, warehouse.Row{"PREDICTION": tt.value}), nil)
			svc := NewPredictionService(q, testSchema, zap.NewNop())

			resp, err := svc.Predict(context.Background(), decodePrediction(t, `{"amount": 150}`))
			require.NoError(t, err)

			assert.Equal(t, tt.wantPrediction, resp.Prediction)
			assert.Equal(t, tt.wantConfidence, resp.Confidence)
			assert.Equal(t, models.PredictionModelXGBoost, resp.Model)
			assert.Nil(t, resp.RiskScore)

			require.Len(t, q.Calls(), 1)
			assert.Len(t, q.Calls()[0].args, 14)
			assert.Equal(t, 150.0, q.Calls()[0].args[0])
		})
	}
}

func TestPredict_FallsBackToHeuristic(t *testing.T) {
	risky := `{
		"amount": 2500, "customer_risk_score": 80, "tx_count_1h": 1,
		"amount_vs_avg_ratio": 1, "location_changed": true, "is_night": "1"
	}`

	tests := []struct {
		name    string
		querier *fakeQuerier
	}{
		{"model call fails", returning(nil, errors.New("Model FRAUD_DETECTION_MODEL does not exist"))},
		{"no rows", returning(resultOf([]string{"PREDICTION"}), nil)},
		{"unusable output", returning(resultOf([]string{"PREDICTION"}, warehouse.Row{"PREDICTION": "n/a"}), nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := NewPredictionService(tt.querier, testSchema, zap.NewNop()).
				Predict(context.Background(), decodePrediction(t, risky))
			require.NoError(t, err)

			assert.Equal(t, models.PredictionModelHeuristic, resp.Model)
			assert.Equal(t, 1, resp.Prediction)
			assert.Equal(t, 0.7, resp.Confidence)
			require.NotNil(t, resp.RiskScore)
			assert.Equal(t, 30+25+10+5, *resp.RiskScore)
		})
	}
}

func TestPredict_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPredictionService(returning(nil, context.Canceled), testSchema, zap.NewNop()).
		Predict(ctx, decodePrediction(t, `{"amount": 1}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHeuristicScore(t *testing.T) {
	tests := []struct {
		name string
		req  models.PredictionRequest
		want int
	}{
		{"nothing suspicious", models.PredictionRequest{Amount: 100}, 0},
		{"boundaries are exclusive", models.PredictionRequest{Amount: 2000, CustomerRiskScore: 70, TxCount1h: 3, AmountVsAvgRatio: 3}, 0},
		{"every signal", models.PredictionRequest{
			Amount: 2001, CustomerRiskScore: 71, TxCount1h: 4, AmountVsAvgRatio: 3.5,
			LocationChanged: 1, DeviceChanged: 1, IsInternational: 1, IsNight: 1, MerchantRiskScore: 3,
		}, 125},
		{"merchant risk must be exactly 3", models.PredictionRequest{MerchantRiskScore: 4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeuristicScore(&tt.req))
		})
	}
}

func TestHeuristicPrediction_Threshold(t *testing.T) {
	// 30 + 10 = 40
	atThreshold := &models.PredictionRequest{Amount: 2500, LocationChanged: 1}
	assert.Equal(t, 1, HeuristicPrediction(atThreshold).Prediction)

	// 30 + 5 = 35
	below := &models.PredictionRequest{Amount: 2500, IsNight: 1}
	resp := HeuristicPrediction(below)
	assert.Equal(t, 0, resp.Prediction)
	assert.Equal(t, 35, *resp.RiskScore)
}
