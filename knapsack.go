// Package knapsack is the public API for embedding the knapsack solving
// service.
//
// Consumers construct and run the HTTP/MCP server without forking it:
//
//	app, err := knapsack.New(
//	    knapsack.WithVersion(version),
//	    knapsack.WithLogger(logger),
//	    knapsack.WithStore("sqlite", "/var/lib/knapsack/knapsack.db"),
//	)
//	if err != nil { ... }
//	if err := app.Run(ctx); err != nil { ... }
//
// The engine is also usable on its own through Solve.
//
// The import graph enforces a strict no-cycle rule: knapsack (root) imports
// internal/*, but internal/* never imports knapsack (root).
package knapsack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ashita-ai/knapsack/api"
	"github.com/ashita-ai/knapsack/internal/auth"
	"github.com/ashita-ai/knapsack/internal/config"
	"github.com/ashita-ai/knapsack/internal/mcp"
	"github.com/ashita-ai/knapsack/internal/ratelimit"
	"github.com/ashita-ai/knapsack/internal/server"
	"github.com/ashita-ai/knapsack/internal/service/problems"
	"github.com/ashita-ai/knapsack/internal/storage"
	"github.com/ashita-ai/knapsack/internal/storage/postgres"
	"github.com/ashita-ai/knapsack/internal/storage/sqlite"
	"github.com/ashita-ai/knapsack/internal/telemetry"
	"github.com/ashita-ai/knapsack/migrations"
)

// shutdownTimeout bounds graceful HTTP shutdown after Run's context ends.
const shutdownTimeout = 15 * time.Second

// App is the knapsack server lifecycle. Construct with New(), run with Run().
type App struct {
	cfg          config.Config
	store        storage.Store
	srv          *server.Server
	limiter      ratelimit.Limiter
	otelShutdown telemetry.Shutdown
	logger       *slog.Logger
	version      string
}

// New loads configuration, opens and migrates the store, and wires every
// subsystem. It does NOT accept connections; call Run().
func New(opts ...Option) (*App, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	version := o.version
	if version == "" {
		version = "dev"
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	o.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("knapsack starting", "version", version, "port", cfg.Port, "store", cfg.Store)

	ctx := context.Background()
	otelShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Endpoint:    cfg.OTELEndpoint,
		ServiceName: cfg.ServiceName,
		Version:     version,
		Insecure:    cfg.OTELInsecure,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}

	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTExpiration)
	if err != nil {
		_ = store.Close()
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("auth: %w", err)
	}

	var limiter ratelimit.Limiter = ratelimit.NoopLimiter{}
	retryAfter := time.Second
	if cfg.RateLimitEnabled {
		mem := ratelimit.NewMemoryLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limiter, retryAfter = mem, mem.RetryAfter()
		logger.Info("rate limiting enabled", "rps", cfg.RateLimitRPS, "burst", cfg.RateLimitBurst)
	}

	svc := problems.New(store, cfg.SolveTimeout, logger)
	mcpSrv := mcp.New(svc, logger, version)

	srv := server.New(server.ServerConfig{
		Store:               store,
		JWTMgr:              jwtMgr,
		ProblemSvc:          svc,
		Logger:              logger,
		Limiter:             limiter,
		MCPServer:           mcpSrv.MCPServer(),
		Middleware:          o.middlewares,
		OpenAPISpec:         api.OpenAPISpec,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		StoreName:           cfg.Store,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RetryAfter:          retryAfter,
	})

	return &App{
		cfg:          cfg,
		store:        store,
		srv:          srv,
		limiter:      limiter,
		otelShutdown: otelShutdown,
		logger:       logger,
		version:      version,
	}, nil
}

// openStore connects the configured backend and applies its migrations.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		if err := db.RunMigrations(ctx, migrations.Postgres()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return db, nil
	default:
		db, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		if err := db.RunMigrations(ctx, migrations.SQLite()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return db, nil
	}
}

// Handler returns the root HTTP handler, for tests and custom listeners.
func (a *App) Handler() http.Handler {
	return a.srv.Handler()
}

// Run serves HTTP until ctx is cancelled or the server fails, then shuts
// down. Callers should not call Shutdown separately.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		a.idempotencyCleanupLoop(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) idempotencyCleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.IdempotencyCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			deleted, err := a.store.CleanupIdempotencyKeys(opCtx, a.cfg.IdempotencyCompletedTTL, a.cfg.IdempotencyAbandonedTTL)
			cancel()
			if err != nil {
				a.logger.Warn("idempotency cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				a.logger.Info("idempotency cleanup deleted rows", "deleted", deleted)
			}
		}
	}
}

// Shutdown stops accepting requests, drains in-flight ones, and releases the
// store, limiter, and telemetry exporters.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.limiter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("rate limiter: %w", err))
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}
	if err := a.otelShutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown failed", "error", err)
	}
	a.logger.Info("knapsack stopped")
	return errors.Join(errs...)
}
