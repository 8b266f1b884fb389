package snowflake

import (
	"errors"

	"github.com/snowflakedb/gosnowflake"

	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
)

// translateError turns driver errors into *apperrors.QueryError, keeping the
// Snowflake error number so the executor can recognise dropped sessions.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var sfErr *gosnowflake.SnowflakeError
	if errors.As(err, &sfErr) {
		msg := sfErr.Message
		if msg == "" {
			msg = sfErr.Error()
		}
		return &apperrors.QueryError{
			Code:     sfErr.Number,
			SQLState: sfErr.SQLState,
			Message:  msg,
			Err:      err,
		}
	}

	return &apperrors.QueryError{Message: err.Error(), Err: err}
}
