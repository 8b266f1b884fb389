package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/audit"
	sqlpolicy "github.com/ekaya-inc/fraudwatch/pkg/sql"
)

// QueryService runs ad-hoc statements submitted by the dashboard.
type QueryService interface {
	// ExecuteSelect runs statement if it passes the SELECT-only gate.
	// A refused statement returns *apperrors.PolicyError without touching the warehouse.
	ExecuteSelect(ctx context.Context, statement string) (*warehouse.QueryResult, error)
}

type queryService struct {
	querier warehouse.Querier
	auditor *audit.SecurityAuditor
	logger  *zap.Logger
}

// NewQueryService creates a new query service. auditor may be nil.
func NewQueryService(querier warehouse.Querier, auditor *audit.SecurityAuditor, logger *zap.Logger) QueryService {
	return &queryService{
		querier: querier,
		auditor: auditor,
		logger:  logger.Named("query-service"),
	}
}

var _ QueryService = (*queryService)(nil)

func (s *queryService) ExecuteSelect(ctx context.Context, statement string) (*warehouse.QueryResult, error) {
	checked, err := sqlpolicy.CheckSelectOnly(statement)
	if err != nil {
		s.auditor.LogStatementRefused(ctx, audit.SourceAdHoc, statement, err.Error())
		return nil, err
	}

	result, err := s.querier.Query(ctx, checked)
	if err != nil {
		return nil, err
	}
	return result, nil
}
