package storage

import (
	"encoding/json"
	"errors"
)

var (
	// ErrIdempotencyPayloadMismatch is returned when an idempotency key is reused
	// with a different request payload hash for the same (owner, endpoint).
	ErrIdempotencyPayloadMismatch = errors.New("idempotency key reused with different payload")
	// ErrIdempotencyInProgress indicates a matching idempotency key is currently being processed.
	ErrIdempotencyInProgress = errors.New("idempotency key request already in progress")
)

// IdempotencyLookup describes the current state of an idempotency key lookup.
type IdempotencyLookup struct {
	Completed    bool
	StatusCode   int
	ResponseData json.RawMessage
}
