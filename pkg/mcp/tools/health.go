package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
)

type healthResult struct {
	Status    string                     `json:"status"`
	Version   string                     `json:"version"`
	Warehouse *warehouse.ConnectionStats `json:"warehouse,omitempty"`
}

// ConnectionStatser reports warehouse session counters.
type ConnectionStatser interface {
	Stats() warehouse.ConnectionStats
}

// RegisterHealthTool adds a health check tool to the MCP server.
// The tool returns the server status, version and, when conns is non-nil,
// the warehouse session counters. It never opens a session itself.
func RegisterHealthTool(s *server.MCPServer, version string, conns ConnectionStatser) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status, version and warehouse session state"),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		health := healthResult{Status: "ok", Version: version}
		if conns != nil {
			stats := conns.Stats()
			health.Warehouse = &stats
		}
		result, err := json.Marshal(health)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal health result: %w", err)
		}
		return mcp.NewToolResultText(string(result)), nil
	})
}
