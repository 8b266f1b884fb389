package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/models"
	"github.com/ekaya-inc/fraudwatch/pkg/services"
)

type mockIntelligenceService struct {
	turn      *models.IntelligenceTurn
	err       error
	questions []string
}

func (m *mockIntelligenceService) Ask(ctx context.Context, question string) (*models.IntelligenceTurn, error) {
	m.questions = append(m.questions, question)
	return m.turn, m.err
}

type mockQueryService struct {
	result     *warehouse.QueryResult
	err        error
	statements []string
}

func (m *mockQueryService) ExecuteSelect(ctx context.Context, statement string) (*warehouse.QueryResult, error) {
	m.statements = append(m.statements, statement)
	return m.result, m.err
}

// mockDashboardService implements only Metrics; the embedded nil interface
// panics if any other method is reached.
type mockDashboardService struct {
	services.DashboardService
	metrics warehouse.Row
	err     error
}

func (m *mockDashboardService) Metrics(ctx context.Context) (warehouse.Row, error) {
	return m.metrics, m.err
}

// toolResponse is the decoded JSON-RPC reply of a tools/call.
type toolResponse struct {
	Result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (r toolResponse) text(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, r.Result.Content, "expected content in response")
	return r.Result.Content[0].Text
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) toolResponse {
	t.Helper()

	request, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.NoError(t, err)

	result := s.HandleMessage(context.Background(), request)
	resultBytes, err := json.Marshal(result)
	require.NoError(t, err)

	var response toolResponse
	require.NoError(t, json.Unmarshal(resultBytes, &response))
	return response
}
