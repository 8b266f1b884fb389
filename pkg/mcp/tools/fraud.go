package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/logging"
	"github.com/ekaya-inc/fraudwatch/pkg/services"
)

// Row limits of run_select_query.
const (
	defaultQueryLimit = 100
	maxQueryLimit     = 1000
)

// FraudToolDeps contains the services the fraud tools call into.
type FraudToolDeps struct {
	IntelligenceService services.IntelligenceService
	QueryService        services.QueryService
	DashboardService    services.DashboardService
	Logger              *zap.Logger
}

// selectQueryResult is the payload of run_select_query.
type selectQueryResult struct {
	Columns   []string        `json:"columns"`
	Rows      []warehouse.Row `json:"rows"`
	RowCount  int             `json:"row_count"`
	Truncated bool            `json:"truncated"`
}

// RegisterFraudTools adds the assistant, SELECT runner and metrics tools.
func RegisterFraudTools(s *server.MCPServer, deps *FraudToolDeps) {
	registerAskTool(s, deps)
	registerSelectQueryTool(s, deps)
	registerMetricsTool(s, deps)
}

func registerAskTool(s *server.MCPServer, deps *FraudToolDeps) {
	tool := mcp.NewTool(
		"ask_fraud_question",
		mcp.WithDescription("Answer a natural-language question about the fraud data. "+
			"Returns the assistant's content blocks: explanation, generated SQL and suggestions."),
		mcp.WithString(
			"question",
			mcp.Required(),
			mcp.Description("Question in plain language, e.g. \"Which categories have the most fraud?\""),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return NewErrorResult("invalid_request", err.Error()), nil
		}

		turn, err := deps.IntelligenceService.Ask(ctx, trimString(question))
		if err != nil {
			if errResult := NewSQLErrorResult(err); errResult != nil {
				return errResult, nil
			}
			return nil, fmt.Errorf("failed to answer question: %w", err)
		}

		return jsonResult("ask_fraud_question", turn.Message)
	})
}

func registerSelectQueryTool(s *server.MCPServer, deps *FraudToolDeps) {
	tool := mcp.NewTool(
		"run_select_query",
		mcp.WithDescription("Execute a single read-only SELECT statement against the fraud warehouse."),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("SQL SELECT statement to execute"),
		),
		mcp.WithNumber(
			"limit",
			mcp.Description("Max rows to return (default: 100, max: 1000)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, err := req.RequireString("sql")
		if err != nil {
			return NewErrorResult("invalid_request", err.Error()), nil
		}

		limit := defaultQueryLimit
		if limitVal, ok := getOptionalFloat(req, "limit"); ok {
			limit = int(limitVal)
		}
		if limit > maxQueryLimit {
			limit = maxQueryLimit
		}
		if limit < 1 {
			limit = defaultQueryLimit
		}

		startTime := time.Now()
		result, err := deps.QueryService.ExecuteSelect(ctx, sql)
		if err != nil {
			if errResult := NewSQLErrorResult(err); errResult != nil {
				return errResult, nil
			}
			return nil, fmt.Errorf("query execution failed: %w", err)
		}

		rows := result.Rows
		truncated := len(rows) > limit
		if truncated {
			rows = rows[:limit]
		}

		deps.Logger.Debug("MCP query executed",
			zap.String("sql", logging.SanitizeQuery(sql)),
			zap.Int("row_count", result.Len()),
			zap.Bool("truncated", truncated),
			zap.Int64("execution_ms", time.Since(startTime).Milliseconds()))

		return jsonResult("run_select_query", selectQueryResult{
			Columns:   result.Columns,
			Rows:      rows,
			RowCount:  len(rows),
			Truncated: truncated,
		})
	})
}

func registerMetricsTool(s *server.MCPServer, deps *FraudToolDeps) {
	tool := mcp.NewTool(
		"fraud_metrics",
		mcp.WithDescription("Headline fraud metrics: transaction and fraud counts, fraud rate and amounts."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics, err := deps.DashboardService.Metrics(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch metrics: %w", err)
		}
		return jsonResult("fraud_metrics", metrics)
	})
}
