// Package ctxutil provides shared context key accessors.
//
// Both server and mcp read the identity and request ID that the HTTP
// middleware stores, and server imports mcp; the accessors live here so
// neither package imports the other for them.
package ctxutil

import (
	"context"

	"github.com/google/uuid"

	"github.com/ashita-ai/knapsack/internal/auth"
)

type contextKey string

const (
	keyClaims    contextKey = "claims"
	keyRequestID contextKey = "request_id"
)

// WithClaims returns a new context carrying the given claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, keyClaims, claims)
}

// ClaimsFromContext extracts the JWT claims from the context.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if v, ok := ctx.Value(keyClaims).(*auth.Claims); ok {
		return v
	}
	return nil
}

// UserIDFromContext returns the authenticated user's id, or uuid.Nil when the
// request is anonymous.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if c := ClaimsFromContext(ctx); c != nil {
		return c.UserID()
	}
	return uuid.Nil
}

// WithRequestID returns a new context carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// RequestIDFromContext extracts the request ID from the context.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(keyRequestID).(string); ok {
		return v
	}
	return ""
}
