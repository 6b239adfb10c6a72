// Package storage defines the persistence contract for users and saved
// problems. Two implementations exist: postgres (pgxpool) for deployments and
// sqlite (sqlx over modernc.org/sqlite) for single-node use and tests.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/solver"
)

// Store persists accounts and solved problems. Implementations must be safe
// for concurrent use.
type Store interface {
	// CreateUser inserts a user. Returns ErrDuplicate if the email is taken.
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	// SaveProblem stores a problem with its solution under ownerID and
	// returns the stored record with its generated id.
	SaveProblem(ctx context.Context, ownerID uuid.UUID, p solver.Problem, sol solver.Solution) (model.ProblemRecord, error)
	// ListProblems returns ownerID's problems newest first, plus the total
	// count ignoring limit and offset.
	ListProblems(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.ProblemRecord, int, error)
	// GetProblem returns ErrNotFound when id does not exist or belongs to
	// another owner.
	GetProblem(ctx context.Context, ownerID, id uuid.UUID) (model.ProblemRecord, error)

	// BeginIdempotency reserves key for (ownerID, endpoint). A zero lookup
	// means the caller owns processing. A lookup with Completed set carries
	// the stored response to replay. A reserved key that is still being
	// processed returns ErrIdempotencyInProgress, and a key reused with a
	// different requestHash returns ErrIdempotencyPayloadMismatch.
	//
	// Stale in-progress keys are not taken over; they block retries until
	// CleanupIdempotencyKeys removes them.
	BeginIdempotency(ctx context.Context, ownerID uuid.UUID, endpoint, key, requestHash string) (IdempotencyLookup, error)
	// CompleteIdempotency stores the final response for a reserved key.
	CompleteIdempotency(ctx context.Context, ownerID uuid.UUID, endpoint, key string, statusCode int, responseData any) error
	// ClearInProgressIdempotency drops an in-progress reservation so the
	// client can retry.
	ClearInProgressIdempotency(ctx context.Context, ownerID uuid.UUID, endpoint, key string) error
	// CleanupIdempotencyKeys deletes completed keys older than completedTTL
	// and in-progress keys older than inProgressTTL, returning the count.
	CleanupIdempotencyKeys(ctx context.Context, completedTTL, inProgressTTL time.Duration) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// EncodedProblem is the column form of a ProblemRecord's JSON payloads.
type EncodedProblem struct {
	Items    []byte
	Solution []byte
}

// EncodeProblem serializes the items and solution of rec.
func EncodeProblem(rec model.ProblemRecord) (EncodedProblem, error) {
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return EncodedProblem{}, fmt.Errorf("storage: encode items: %w", err)
	}
	sol, err := json.Marshal(rec.Solution)
	if err != nil {
		return EncodedProblem{}, fmt.Errorf("storage: encode solution: %w", err)
	}
	return EncodedProblem{Items: items, Solution: sol}, nil
}

// DecodeProblem fills the items and solution of rec from their JSON columns.
func DecodeProblem(rec *model.ProblemRecord, enc EncodedProblem) error {
	if err := json.Unmarshal(enc.Items, &rec.Items); err != nil {
		return fmt.Errorf("storage: decode items for problem %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(enc.Solution, &rec.Solution); err != nil {
		return fmt.Errorf("storage: decode solution for problem %s: %w", rec.ID, err)
	}
	return nil
}
