package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/mcp/tools"
)

// ServerName is the MCP implementation name reported to clients.
const ServerName = "fraudwatch"

const instructions = "Read-only access to the fraud monitoring warehouse. " +
	"Use ask_fraud_question for plain-language questions, run_select_query for " +
	"a specific SELECT statement, and fraud_metrics for headline numbers."

// Server wraps the mcp-go MCPServer.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer creates a new MCP server instance.
func NewServer(name, version string, logger *zap.Logger) *Server {
	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)

	return &Server{
		mcp:    mcpServer,
		logger: logger.Named("mcp"),
	}
}

// NewFraudServer creates the server exposed at /mcp with the health and
// fraud tools registered. conns may be nil.
func NewFraudServer(version string, deps *tools.FraudToolDeps, conns tools.ConnectionStatser, logger *zap.Logger) *Server {
	s := NewServer(ServerName, version, logger)
	if deps.Logger == nil {
		deps.Logger = s.logger
	}
	tools.RegisterHealthTool(s.mcp, version, conns)
	tools.RegisterFraudTools(s.mcp, deps)
	return s
}

// MCP returns the underlying MCPServer for tool registration.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// NewStreamableHTTPServer creates an HTTP transport server wrapping this MCP server.
// The HTTP mux handles routing to /mcp, so no endpoint path is configured here.
func (s *Server) NewStreamableHTTPServer() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithStateLess(true),
	)
}

// RegisterTool is a convenience wrapper for registering a tool.
func (s *Server) RegisterTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
}
