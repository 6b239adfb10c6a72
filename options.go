package knapsack

import (
	"log/slog"
	"net/http"

	"github.com/ashita-ai/knapsack/internal/config"
)

// Option configures an App.
type Option func(*resolvedOptions)

// Middleware wraps the routed HTTP handler. Registered middleware runs after
// authentication, so the caller's identity is already on the context.
type Middleware func(http.Handler) http.Handler

// resolvedOptions holds all extension points after applying defaults.
// Unexported; callers use the With* functions.
type resolvedOptions struct {
	port        int
	storeKind   string
	storeDSN    string
	logger      *slog.Logger
	version     string
	middlewares []func(http.Handler) http.Handler
}

// apply overrides environment configuration with explicit options.
func (o resolvedOptions) apply(cfg *config.Config) {
	if o.port != 0 {
		cfg.Port = o.port
	}
	if o.storeKind == "" {
		return
	}
	cfg.Store = o.storeKind
	switch o.storeKind {
	case config.StorePostgres:
		cfg.DatabaseURL = o.storeDSN
	case config.StoreSQLite:
		cfg.SQLitePath = o.storeDSN
	}
}

// WithPort overrides the TCP port from config (KNAPSACK_PORT env var).
func WithPort(port int) Option {
	return func(o *resolvedOptions) { o.port = port }
}

// WithLogger sets the structured logger for the App.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithVersion sets the version string reported in the health endpoint and logs.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithStore selects the storage backend, overriding KNAPSACK_STORE. kind is
// "sqlite" (dsn is a file path, or ":memory:") or "postgres" (dsn is a
// connection URL).
func WithStore(kind, dsn string) Option {
	return func(o *resolvedOptions) {
		o.storeKind = kind
		o.storeDSN = dsn
	}
}

// WithMiddleware registers an HTTP middleware.
// Multiple middlewares may be registered. Applied in registration order:
// the first-registered middleware is outermost.
func WithMiddleware(mw Middleware) Option {
	return func(o *resolvedOptions) { o.middlewares = append(o.middlewares, mw) }
}
