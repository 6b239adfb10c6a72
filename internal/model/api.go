package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ashita-ai/knapsack/internal/solver"
)

// APIResponse is the standard response envelope for all HTTP API responses.
type APIResponse struct {
	Data any          `json:"data,omitempty"`
	Meta ResponseMeta `json:"meta"`
}

// ListResponse is the standard envelope for paginated list endpoints.
type ListResponse struct {
	Data    any          `json:"data"`
	Total   int          `json:"total"`
	HasMore bool         `json:"has_more"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
	Meta    ResponseMeta `json:"meta"`
}

// APIError is the standard error response envelope.
type APIError struct {
	Error ErrorDetail  `json:"error"`
	Meta  ResponseMeta `json:"meta"`
}

// ResponseMeta contains request metadata included in every response.
type ResponseMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail describes an API error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorCode constants for standard API error codes.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeTimeout       = "TIMEOUT"
)

// ValidationDetails is the Details payload of an INVALID_INPUT error raised
// by the solver.
type ValidationDetails struct {
	Kind   string `json:"kind"`
	Field  string `json:"field,omitempty"`
	ItemID *int64 `json:"item_id,omitempty"`
}

// RegisterRequest is the request body for POST /api/auth/register.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SolveRequest is the request body for POST /api/knapsack/solve and /save.
// An empty AlgorithmType means dp_01.
type SolveRequest struct {
	Items         []solver.Item `json:"items"`
	Capacity      *float64      `json:"capacity"`
	AlgorithmType string        `json:"algorithm_type,omitempty"`
}

// DefaultAlgorithm is used when a SolveRequest names no algorithm.
const DefaultAlgorithm = solver.Exact

// Problem converts the request into a solver problem. A missing capacity
// becomes 0 and is rejected by the solver's validation.
func (r SolveRequest) Problem() solver.Problem {
	alg := DefaultAlgorithm
	if r.AlgorithmType != "" {
		alg = solver.ParseAlgorithm(r.AlgorithmType)
	}
	var capacity float64
	if r.Capacity != nil {
		capacity = *r.Capacity
	}
	return solver.Problem{Items: r.Items, Capacity: capacity, Algorithm: alg}
}

// SaveResponse is the response for POST /api/knapsack/save.
type SaveResponse struct {
	ProblemID uuid.UUID `json:"problem_id"`
	solver.Solution
}

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Store   string `json:"store"`
	Uptime  int64  `json:"uptime_seconds"`
}
