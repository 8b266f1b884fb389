package warehouse

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
	"github.com/ekaya-inc/fraudwatch/pkg/logging"
)

// DefaultRetries is the reconnect budget of Executor.Query.
const DefaultRetries = 1

// SessionDroppedCode is the warehouse error number for a session that no longer exists.
const SessionDroppedCode = 407002

var retryableMarkers = []string{
	"OAuth access token expired",
	"terminated connection",
}

// ConnectionSource hands out the cached session and lets callers drop it.
type ConnectionSource interface {
	Get(ctx context.Context) (Conn, error)
	Invalidate(conn Conn)
}

// Executor runs statements on the managed session, reconnecting once when the
// session expired or was dropped underneath it.
type Executor struct {
	conns  ConnectionSource
	logger *zap.Logger
}

var _ Querier = (*Executor)(nil)

// NewExecutor creates an executor over the given connection source.
func NewExecutor(conns ConnectionSource, logger *zap.Logger) *Executor {
	return &Executor{
		conns:  conns,
		logger: logger.Named("executor"),
	}
}

// Query runs statement with the default retry budget.
func (e *Executor) Query(ctx context.Context, statement string, args ...any) (*QueryResult, error) {
	return e.QueryWithRetries(ctx, statement, DefaultRetries, args...)
}

// QueryWithRetries runs statement, and on a retryable failure with budget left
// invalidates the session and tries again with one less retry. Every other
// failure is logged and returned immediately.
func (e *Executor) QueryWithRetries(ctx context.Context, statement string, retries int, args ...any) (*QueryResult, error) {
	conn, err := e.conns.Get(ctx)
	if err == nil {
		var result *QueryResult
		result, err = conn.Query(ctx, statement, args...)
		if err == nil {
			if result.Rows == nil {
				result.Rows = make([]Row, 0)
			}
			return result, nil
		}
	}

	e.logger.Error("Query failed",
		zap.String("sql", logging.SanitizeQuery(statement)),
		zap.Int("retries_remaining", retries),
		zap.String("error", logging.SanitizeError(err)),
	)

	if retries > 0 && IsRetryable(err) {
		e.logger.Warn("Retryable warehouse error, reconnecting")
		if conn != nil {
			e.conns.Invalidate(conn)
		}
		return e.QueryWithRetries(ctx, statement, retries-1, args...)
	}

	return nil, asQueryError(err)
}

// IsRetryable reports whether err means the session expired or was dropped:
// the message carries an expired-token or terminated-connection marker, or the
// warehouse reported SessionDroppedCode.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var queryErr *apperrors.QueryError
	if errors.As(err, &queryErr) && queryErr.Code == SessionDroppedCode {
		return true
	}

	msg := err.Error()
	for _, marker := range retryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// asQueryError keeps connection and query errors as they are and wraps anything else.
func asQueryError(err error) error {
	var queryErr *apperrors.QueryError
	var connErr *apperrors.ConnectionError
	if errors.As(err, &queryErr) || errors.As(err, &connErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &apperrors.QueryError{Message: err.Error(), Err: err}
}
