// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported storage backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Storage settings.
	Store       string // "sqlite" or "postgres".
	DatabaseURL string // Postgres URL, required when Store is "postgres".
	SQLitePath  string

	// JWT settings.
	JWTPrivateKeyPath string // Path to Ed25519 private key PEM file.
	JWTPublicKeyPath  string // Path to Ed25519 public key PEM file.
	JWTExpiration     time.Duration

	// OTEL settings.
	OTELEndpoint string
	ServiceName  string
	OTELInsecure bool

	// Rate limiting.
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int

	// CORS. Empty means cross-origin requests are not allowed.
	CORSAllowedOrigins []string

	// Operational settings.
	LogLevel            string
	MaxRequestBodyBytes int64 // Maximum request body size in bytes.
	SolveTimeout        time.Duration

	// Idempotency keys on POST /api/knapsack/save.
	IdempotencyCompletedTTL    time.Duration // How long a completed key replays.
	IdempotencyAbandonedTTL    time.Duration // How long an unfinished key blocks retries.
	IdempotencyCleanupInterval time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// Every malformed variable is reported, not just the first.
func Load() (Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := Config{
		Store:              strings.ToLower(envStr("KNAPSACK_STORE", StoreSQLite)),
		DatabaseURL:        envStr("DATABASE_URL", ""),
		SQLitePath:         envStr("KNAPSACK_SQLITE_PATH", "knapsack.db"),
		JWTPrivateKeyPath:  envStr("KNAPSACK_JWT_PRIVATE_KEY", ""),
		JWTPublicKeyPath:   envStr("KNAPSACK_JWT_PUBLIC_KEY", ""),
		OTELEndpoint:       envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:        envStr("OTEL_SERVICE_NAME", "knapsack"),
		CORSAllowedOrigins: envList("KNAPSACK_CORS_ALLOWED_ORIGINS"),
		LogLevel:           envStr("KNAPSACK_LOG_LEVEL", "info"),
	}

	var err error
	cfg.Port, err = envInt("KNAPSACK_PORT", 8080)
	collect(err)
	cfg.ReadTimeout, err = envDuration("KNAPSACK_READ_TIMEOUT", 30*time.Second)
	collect(err)
	cfg.WriteTimeout, err = envDuration("KNAPSACK_WRITE_TIMEOUT", 30*time.Second)
	collect(err)
	cfg.JWTExpiration, err = envDuration("KNAPSACK_JWT_EXPIRATION", 7*24*time.Hour)
	collect(err)
	cfg.OTELInsecure, err = envBool("KNAPSACK_OTEL_INSECURE", false)
	collect(err)
	cfg.RateLimitEnabled, err = envBool("KNAPSACK_RATE_LIMIT_ENABLED", true)
	collect(err)
	cfg.RateLimitRPS, err = envFloat("KNAPSACK_RATE_LIMIT_RPS", 10)
	collect(err)
	cfg.RateLimitBurst, err = envInt("KNAPSACK_RATE_LIMIT_BURST", 20)
	collect(err)
	maxBody, err := envInt("KNAPSACK_MAX_REQUEST_BODY_BYTES", 1*1024*1024) // 1 MB default
	collect(err)
	cfg.MaxRequestBodyBytes = int64(maxBody)
	cfg.SolveTimeout, err = envDuration("KNAPSACK_SOLVE_TIMEOUT", 10*time.Second)
	collect(err)
	cfg.IdempotencyCompletedTTL, err = envDuration("KNAPSACK_IDEMPOTENCY_COMPLETED_TTL", 24*time.Hour)
	collect(err)
	cfg.IdempotencyAbandonedTTL, err = envDuration("KNAPSACK_IDEMPOTENCY_ABANDONED_TTL", time.Hour)
	collect(err)
	cfg.IdempotencyCleanupInterval, err = envDuration("KNAPSACK_IDEMPOTENCY_CLEANUP_INTERVAL", 10*time.Minute)
	collect(err)

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and consistent.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("config: KNAPSACK_SQLITE_PATH is required for the sqlite store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("config: KNAPSACK_STORE=%q must be %q or %q", c.Store, StoreSQLite, StorePostgres)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: KNAPSACK_PORT must be between 1 and 65535")
	}
	if c.JWTExpiration <= 0 {
		return fmt.Errorf("config: KNAPSACK_JWT_EXPIRATION must be positive")
	}
	if c.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("config: KNAPSACK_MAX_REQUEST_BODY_BYTES must be positive")
	}
	if c.SolveTimeout <= 0 {
		return fmt.Errorf("config: KNAPSACK_SOLVE_TIMEOUT must be positive")
	}
	if c.IdempotencyCompletedTTL <= 0 || c.IdempotencyAbandonedTTL <= 0 || c.IdempotencyCleanupInterval <= 0 {
		return fmt.Errorf("config: KNAPSACK_IDEMPOTENCY_* durations must be positive")
	}
	if c.RateLimitEnabled && (c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0) {
		return fmt.Errorf("config: KNAPSACK_RATE_LIMIT_RPS and KNAPSACK_RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal, fmt.Errorf("%s=%q is not a valid number", key, v)
	}
	return f, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}
