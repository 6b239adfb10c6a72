package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ashita-ai/knapsack/internal/auth"
	"github.com/ashita-ai/knapsack/internal/ratelimit"
	"github.com/ashita-ai/knapsack/internal/service/problems"
	"github.com/ashita-ai/knapsack/internal/storage"
)

// Server is the knapsack HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
// Optional fields (nil-safe): Limiter, MCPServer, Middleware, OpenAPISpec.
type ServerConfig struct {
	// Required dependencies.
	Store      storage.Store
	JWTMgr     *auth.JWTManager
	ProblemSvc *problems.Service
	Logger     *slog.Logger

	// Optional dependencies (nil = disabled).
	Limiter   ratelimit.Limiter
	MCPServer *mcpserver.MCPServer
	// Middleware wraps the routed handler inside auth, in order, so the
	// outermost entry runs first.
	Middleware  []func(http.Handler) http.Handler
	OpenAPISpec []byte

	// HTTP server settings.
	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	StoreName           string
	MaxRequestBodyBytes int64
	CORSAllowedOrigins  []string
	RetryAfter          time.Duration
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		Store:               cfg.Store,
		JWTMgr:              cfg.JWTMgr,
		ProblemSvc:          cfg.ProblemSvc,
		Logger:              cfg.Logger,
		Version:             cfg.Version,
		StoreName:           cfg.StoreName,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		OpenAPISpec:         cfg.OpenAPISpec,
	})

	mux := http.NewServeMux()

	// Health (no auth, no rate limit).
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/openapi.yaml", h.HandleOpenAPISpec)

	// Identity (no auth; rate limited by IP).
	mux.HandleFunc("POST /api/auth/register", h.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", h.HandleLogin)
	mux.HandleFunc("GET /api/auth/me", h.HandleMe)

	// Solving and history (auth; rate limited per user).
	mux.HandleFunc("POST /api/knapsack/solve", h.HandleSolve)
	mux.HandleFunc("POST /api/knapsack/save", h.HandleSave)
	mux.HandleFunc("GET /api/knapsack/history", h.HandleHistory)
	mux.HandleFunc("GET /api/knapsack/history/{id}", h.HandleGetProblem)

	// MCP StreamableHTTP transport (auth required).
	if cfg.MCPServer != nil {
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(cfg.MCPServer))
	}

	// Middleware chain (outermost executes first):
	// request ID → security headers → CORS → tracing → logging → auth →
	// rate limit → custom → recovery → handler.
	var handler http.Handler = mux
	handler = recoveryMiddleware(cfg.Logger, handler)
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		handler = cfg.Middleware[i](handler)
	}
	if cfg.Limiter != nil {
		handler = rateLimitMiddleware(cfg.Limiter, cfg.RetryAfter, handler)
	}
	handler = authMiddleware(cfg.JWTMgr, handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = tracingMiddleware(handler)
	handler = corsMiddleware(cfg.CORSAllowedOrigins, handler)
	handler = securityHeadersMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
		},
		handler: handler,
		logger:  cfg.Logger,
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
