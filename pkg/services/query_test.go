package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
	"github.com/ekaya-inc/fraudwatch/pkg/audit"
)

func TestQueryService_ExecuteSelect(t *testing.T) {
	q := returning(resultOf([]string{"N"}, warehouse.Row{"N": int64(1)}), nil)
	svc := NewQueryService(q, nil, zap.NewNop())

	result, err := svc.ExecuteSelect(context.Background(), "  SeLeCt 1 AS N;  ")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Len())

	require.Len(t, q.Calls(), 1)
	assert.Equal(t, "SeLeCt 1 AS N", q.Calls()[0].statement)
}

func TestQueryService_RefusedBeforeWarehouse(t *testing.T) {
	tests := []struct {
		name      string
		statement string
		want      error
	}{
		{"empty", "", apperrors.ErrSQLRequired},
		{"blank", " \n\t", apperrors.ErrSQLRequired},
		{"update", "UPDATE CUSTOMERS SET RISK_SCORE = 0", apperrors.ErrOnlySelectAllowed},
		{"cte", "WITH x AS (SELECT 1) SELECT * FROM x", apperrors.ErrOnlySelectAllowed},
		{"leading comment", "-- hi\nSELECT 1", apperrors.ErrOnlySelectAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{}
			_, err := NewQueryService(q, nil, zap.NewNop()).ExecuteSelect(context.Background(), tt.statement)

			var policyErr *apperrors.PolicyError
			require.True(t, errors.As(err, &policyErr))
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, q.Calls())
		})
	}
}

func TestQueryService_WarehouseErrorPropagates(t *testing.T) {
	queryErr := &apperrors.QueryError{Code: 1003, Message: "syntax error"}
	_, err := NewQueryService(returning(nil, queryErr), nil, zap.NewNop()).ExecuteSelect(context.Background(), "select from")
	assert.ErrorIs(t, err, queryErr)
	assert.False(t, apperrors.IsClientError(err))
}

func TestQueryService_RefusalIsAudited(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewQueryService(&fakeQuerier{}, audit.NewSecurityAuditor(zap.New(core)), zap.NewNop())

	_, err := svc.ExecuteSelect(context.Background(), "DROP TABLE CUSTOMERS")
	require.Error(t, err)

	entries := logs.FilterMessage("Statement refused").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, audit.SourceAdHoc, entries[0].ContextMap()["source"])
}
