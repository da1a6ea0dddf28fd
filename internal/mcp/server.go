package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/clewlabs/memoria/internal/capture"
	"github.com/clewlabs/memoria/internal/patterns"
	"github.com/clewlabs/memoria/internal/ratelimit"
	"github.com/clewlabs/memoria/internal/recall"
	"github.com/clewlabs/memoria/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "memoria-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultUserID keys archive data when a tool call carries no user_id
	DefaultUserID = "mcp-user"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	store   storage.Store
	engine  *recall.Engine
	capture *capture.Service
	pattern *patterns.Service
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewServer creates a new MCP server instance over shared services.
// The caller owns the store's lifecycle; the REST server may be
// running against the same instances.
func NewServer(store storage.Store, engine *recall.Engine, cap *capture.Service, pat *patterns.Service, limiter *ratelimit.Limiter, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:     mcpServer,
		store:   store,
		engine:  engine,
		capture: cap,
		pattern: pat,
		limiter: limiter,
		logger:  logger.With("component", "mcp"),
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(recallTool(), s.handleRecall)
	s.mcp.AddTool(captureTool(), s.handleCapture)
	s.mcp.AddTool(patternsTool(), s.handlePatterns)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
	return nil
}
