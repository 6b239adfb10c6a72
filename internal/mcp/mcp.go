// Package mcp implements the Model Context Protocol server for the knapsack
// service.
//
// The MCP server exposes the same capabilities as the HTTP API through MCP
// tools, resources, and prompts, so agents can solve problems and browse the
// caller's saved history. Identity comes from the claims the HTTP auth
// middleware places on the request context.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ashita-ai/knapsack/internal/ctxutil"
	"github.com/ashita-ai/knapsack/internal/service/problems"
	"github.com/ashita-ai/knapsack/internal/solver"
	"github.com/ashita-ai/knapsack/internal/storage"
)

// Server wraps the MCP server with the problems service.
type Server struct {
	mcpServer *mcpserver.MCPServer
	svc       *problems.Service
	logger    *slog.Logger
}

// New creates and configures a new MCP server with all tools, resources, and
// prompts registered.
func New(svc *problems.Service, logger *slog.Logger, version string) *Server {
	s := &Server{
		svc:    svc,
		logger: logger,
	}

	s.mcpServer = mcpserver.NewMCPServer(
		"knapsack",
		version,
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
	)

	s.registerResources()
	s.registerTools()
	s.registerPrompts()

	return s
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// owner returns the authenticated user id or an error result for anonymous
// callers.
func owner(ctx context.Context) (uuid.UUID, *mcplib.CallToolResult) {
	id := ctxutil.UserIDFromContext(ctx)
	if id == uuid.Nil {
		return uuid.Nil, errorResult("authentication required")
	}
	return id, nil
}

// failureResult turns a service error into a tool error. Internal failures
// are logged and reported opaquely.
func (s *Server) failureResult(op string, err error) *mcplib.CallToolResult {
	var verr *solver.ValidationError
	switch {
	case errors.As(err, &verr):
		return errorResult(fmt.Sprintf("invalid problem (%s): %s", verr.Kind, verr.Message))
	case errors.Is(err, problems.ErrSolveTimeout):
		return errorResult("solve timed out")
	case errors.Is(err, storage.ErrNotFound):
		return errorResult("problem not found")
	default:
		s.logger.Error("mcp: "+op+" failed", "error", err)
		return errorResult(op + " failed")
	}
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcp: marshal result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: string(data)},
		},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
