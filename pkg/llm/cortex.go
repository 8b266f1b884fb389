package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	sqlpolicy "github.com/ekaya-inc/fraudwatch/pkg/sql"
)

// CortexCompleter runs completions inside the warehouse with
// SNOWFLAKE.CORTEX.COMPLETE, through the same executor as every other statement.
type CortexCompleter struct {
	querier warehouse.Querier
	model   string
	logger  *zap.Logger
}

var _ Completer = (*CortexCompleter)(nil)

// NewCortexCompleter creates a warehouse-side completer for model.
func NewCortexCompleter(querier warehouse.Querier, model string, logger *zap.Logger) *CortexCompleter {
	return &CortexCompleter{
		querier: querier,
		model:   model,
		logger:  logger.Named("cortex"),
	}
}

// CortexStatement embeds model and prompt as single-quoted literals.
func CortexStatement(model, prompt string) string {
	return fmt.Sprintf("SELECT SNOWFLAKE.CORTEX.COMPLETE('%s', '%s') AS RESPONSE",
		sqlpolicy.EscapeStringLiteral(model),
		sqlpolicy.EscapeStringLiteral(prompt),
	)
}

// Complete implements Completer.
func (c *CortexCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	result, err := c.querier.Query(ctx, CortexStatement(c.model, prompt))
	if err != nil {
		llmErr := NewError(ErrorTypeWarehouse, "completion statement failed", false, err)
		llmErr.Model = c.model
		return "", llmErr
	}

	row, ok := result.First()
	if !ok {
		return "", emptyResponse(c.model)
	}

	text := responseColumn(row)
	if strings.TrimSpace(text) == "" {
		return "", emptyResponse(c.model)
	}

	c.logger.Debug("Completion finished",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)),
		zap.Int("response_len", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return text, nil
}

// Model implements Completer.
func (c *CortexCompleter) Model() string {
	return c.model
}

// responseColumn reads RESPONSE regardless of how the column name was cased.
func responseColumn(row warehouse.Row) string {
	v, ok := row["RESPONSE"]
	if !ok {
		for k, val := range row {
			if strings.EqualFold(k, "RESPONSE") {
				v = val
				break
			}
		}
	}
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
