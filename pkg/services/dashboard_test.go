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
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
	"github.com/ekaya-inc/fraudwatch/pkg/audit"
	"github.com/ekaya-inc/fraudwatch/pkg/models"
)

func newTestDashboard(q warehouse.Querier) DashboardService {
	return NewDashboardService(q, testSchema, nil, zap.NewNop())
}

func TestDashboard_AlertsLimit(t *testing.T) {
	tests := []struct {
		name      string
		filter    models.AlertFilter
		wantLimit string
		pending   bool
	}{
		{"default", models.AlertFilter{}, "LIMIT 50", false},
		{"explicit", models.AlertFilter{Limit: 5}, "LIMIT 5", false},
		{"capped", models.AlertFilter{Limit: 50000}, "LIMIT 1000", false},
		{"pending only", models.AlertFilter{PendingOnly: true, Limit: 10}, "LIMIT 10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{}
			rows, err := newTestDashboard(q).Alerts(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.NotNil(t, rows)

			calls := q.Calls()
			require.Len(t, calls, 1)
			stmt := calls[0].statement
			assert.True(t, strings.HasSuffix(stmt, tt.wantLimit), stmt)
			assert.Contains(t, stmt, "FROM MG_COCO.FRAUD_DETECTION.TRANSACTIONS t")
			assert.NotContains(t, stmt, "{schema}")
			assert.Equal(t, tt.pending, strings.Contains(stmt, "INVESTIGATION_STATUS IN ('pending', 'investigating')"))
		})
	}
}

func TestDashboard_AlertsNegativeLimit(t *testing.T) {
	q := &fakeQuerier{}
	_, err := newTestDashboard(q).Alerts(context.Background(), models.AlertFilter{Limit: -1})
	assert.True(t, apperrors.IsClientError(err))
	assert.Empty(t, q.Calls())
}

func TestDashboard_EmptyAggregatesEncodeAsArrays(t *testing.T) {
	svc := newTestDashboard(returning(&warehouse.QueryResult{Columns: []string{"CATEGORIA"}}, nil))

	rows, err := svc.FraudByCategory(context.Background())
	require.NoError(t, err)

	encoded, err := json.Marshal(rows)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(encoded))
}

func TestDashboard_QueryErrorWrapped(t *testing.T) {
	queryErr := &apperrors.QueryError{Message: "warehouse suspended"}
	svc := newTestDashboard(returning(nil, queryErr))

	_, err := svc.FraudByGeography(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, queryErr)
	assert.Contains(t, err.Error(), "fraud by geography")
}

func TestDashboard_ComparePeriods(t *testing.T) {
	q := &fakeQuerier{}
	_, err := newTestDashboard(q).ComparePeriods(context.Background(), DefaultPeriod1, DefaultPeriod2)
	require.NoError(t, err)

	calls := q.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []any{"2025-01-01", "2025-01-15", "2025-01-16", "2025-01-31"}, calls[0].args)
	assert.Contains(t, calls[0].statement, "'Period 1' AS PERIODO")
	assert.Contains(t, calls[0].statement, "UNION ALL")
	assert.Equal(t, 4, strings.Count(calls[0].statement, "?"))
}

func TestDashboard_ComparePeriodsValidation(t *testing.T) {
	tests := []struct {
		name      string
		p1, p2    models.PeriodRange
		wantField string
	}{
		{"not a date", models.PeriodRange{Start: "yesterday", End: "2025-01-15"}, DefaultPeriod2, "period1_start"},
		{"injection attempt", DefaultPeriod1, models.PeriodRange{Start: "2025-01-16", End: "2025-01-31' OR '1'='1"}, "period2_end"},
		{"reversed", models.PeriodRange{Start: "2025-02-01", End: "2025-01-01"}, DefaultPeriod2, "period1_end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{}
			_, err := newTestDashboard(q).ComparePeriods(context.Background(), tt.p1, tt.p2)

			var vErr *apperrors.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.Empty(t, q.Calls())
		})
	}
}

func TestDashboard_Customers(t *testing.T) {
	t.Run("transactions by id are bound", func(t *testing.T) {
		q := &fakeQuerier{}
		_, err := newTestDashboard(q).CustomerTransactions(context.Background(), " C0042 ")
		require.NoError(t, err)
		require.Len(t, q.Calls(), 1)
		assert.Equal(t, []any{"C0042"}, q.Calls()[0].args)
		assert.Contains(t, q.Calls()[0].statement, "WHERE t.CUSTOMER_ID = ?")
	})

	t.Run("search is bound as a LIKE pattern", func(t *testing.T) {
		q := &fakeQuerier{}
		_, err := newTestDashboard(q).SearchCustomers(context.Background(), "ana")
		require.NoError(t, err)
		require.Len(t, q.Calls(), 1)
		assert.Equal(t, []any{"%ana%", "%ana%"}, q.Calls()[0].args)
	})

	t.Run("blank search lists top risk customers", func(t *testing.T) {
		q := &fakeQuerier{}
		_, err := newTestDashboard(q).SearchCustomers(context.Background(), "  ")
		require.NoError(t, err)
		require.Len(t, q.Calls(), 1)
		assert.Contains(t, q.Calls()[0].statement, "LIMIT 10")
		assert.Empty(t, q.Calls()[0].args)
	})

	t.Run("injection rejected", func(t *testing.T) {
		q := &fakeQuerier{}
		_, err := newTestDashboard(q).SearchCustomers(context.Background(), "' OR '1'='1")
		assert.True(t, apperrors.IsClientError(err))
		assert.Empty(t, q.Calls())
	})
}

func TestDashboard_Metrics(t *testing.T) {
	empty, err := newTestDashboard(&fakeQuerier{}).Metrics(context.Background())
	require.NoError(t, err)
	encoded, _ := json.Marshal(empty)
	assert.Equal(t, "{}", string(encoded))

	row := warehouse.Row{"TOTAL_TRANSACTIONS": int64(1000), "FRAUD_RATE": 2.5}
	got, err := newTestDashboard(returning(resultOf([]string{"TOTAL_TRANSACTIONS", "FRAUD_RATE"}, row), nil)).Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, row, got)
}

func TestDashboard_ModelPerformance(t *testing.T) {
	row := warehouse.Row{
		"TRUE_POSITIVES":  int64(80),
		"FALSE_POSITIVES": int64(20),
		"FALSE_NEGATIVES": int64(20),
		"TRUE_NEGATIVES":  int64(880),
	}
	perf, err := newTestDashboard(returning(resultOf(nil, row), nil)).ModelPerformance(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(80), perf.TruePositives)
	assert.InDelta(t, 80.0, perf.Precision, 1e-9)
	assert.InDelta(t, 80.0, perf.Recall, 1e-9)
	assert.InDelta(t, 80.0, perf.F1, 1e-9)
	assert.InDelta(t, 96.0, perf.Accuracy, 1e-9)
}

func TestDashboard_ModelPerformanceNoData(t *testing.T) {
	row := warehouse.Row{"TRUE_POSITIVES": nil, "FALSE_POSITIVES": nil, "FALSE_NEGATIVES": nil, "TRUE_NEGATIVES": nil}
	perf, err := newTestDashboard(returning(resultOf(nil, row), nil)).ModelPerformance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &models.ModelPerformance{}, perf)
}

func TestDashboard_MapData(t *testing.T) {
	q := returning(resultOf([]string{"CITY", "TOTAL_TRANSACTIONS", "FRAUD_RATE"},
		warehouse.Row{"CITY": "Medellín", "TOTAL_TRANSACTIONS": int64(420), "FRAUD_RATE": 1.9},
		warehouse.Row{"CITY": "Cali", "TOTAL_TRANSACTIONS": "300", "FRAUD_RATE": nil},
	), nil)

	points, err := newTestDashboard(q).MapData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.MapPoint{
		{City: "Medellín", Count: 420, FraudRate: 1.9},
		{City: "Cali", Count: 300, FraudRate: 0},
	}, points)
}

func TestDashboard_InjectionAttemptIsAudited(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	q := &fakeQuerier{}
	svc := NewDashboardService(q, testSchema, audit.NewSecurityAuditor(zap.New(core)), zap.NewNop())
	ctx := audit.WithClient(context.Background(), audit.ClientInfo{RequestID: "req-7", ClientIP: "10.1.2.3:4000"})

	_, err := svc.CustomerTransactions(ctx, "' OR '1'='1")
	require.Error(t, err)
	assert.Empty(t, q.Calls())

	entries := logs.FilterMessage("SQL injection attempt detected").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "id", fields["param_name"])
	assert.Equal(t, "customer_transactions", fields["operation"])
	assert.Equal(t, "req-7", fields["request_id"])
	assert.NotEmpty(t, fields["fingerprint"])
}
