// Package ratelimit throttles API callers with a token bucket per key.
//
// Solve requests are CPU bound: an exact solve may fill a ten million cell
// table, so each caller is held to a sustained rate with a small burst.
package ratelimit

import "context"

// Limiter decides whether a request identified by key should be allowed.
// Implementations must be safe for concurrent use.
type Limiter interface {
	// Allow returns true if the request should proceed. The key is opaque;
	// callers construct it (e.g. "user:<uuid>" or "ip:<addr>").
	// Returning an error signals a limiter malfunction; callers treat errors
	// as fail-open.
	Allow(ctx context.Context, key string) (bool, error)

	// Close releases resources (cleanup goroutines).
	Close() error
}

// NoopLimiter permits every request. Used when rate limiting is disabled.
type NoopLimiter struct{}

// Allow always returns true.
func (NoopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

// Close is a no-op.
func (NoopLimiter) Close() error { return nil }
