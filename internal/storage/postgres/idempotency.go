package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ashita-ai/knapsack/internal/storage"
)

// BeginIdempotency reserves key for ownerID on endpoint, or reports the state
// of an existing reservation.
func (db *DB) BeginIdempotency(ctx context.Context, ownerID uuid.UUID, endpoint, key, requestHash string) (storage.IdempotencyLookup, error) {
	tag, err := db.pool.Exec(ctx,
		`INSERT INTO idempotency_keys (owner_id, endpoint, idempotency_key, request_hash, status)
		 VALUES ($1, $2, $3, $4, 'in_progress')
		 ON CONFLICT DO NOTHING`,
		ownerID, endpoint, key, requestHash,
	)
	if err != nil {
		return storage.IdempotencyLookup{}, fmt.Errorf("storage: begin idempotency: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return storage.IdempotencyLookup{}, nil // caller owns processing
	}

	var (
		storedHash   string
		status       string
		statusCode   *int
		responseData []byte
	)
	if err := db.pool.QueryRow(ctx,
		`SELECT request_hash, status, status_code, response_data
		 FROM idempotency_keys
		 WHERE owner_id = $1 AND endpoint = $2 AND idempotency_key = $3`,
		ownerID, endpoint, key,
	).Scan(&storedHash, &status, &statusCode, &responseData); err != nil {
		return storage.IdempotencyLookup{}, fmt.Errorf("storage: lookup idempotency: %w", err)
	}

	if storedHash != requestHash {
		return storage.IdempotencyLookup{}, storage.ErrIdempotencyPayloadMismatch
	}
	if status == "completed" {
		code := 0
		if statusCode != nil {
			code = *statusCode
		}
		return storage.IdempotencyLookup{Completed: true, StatusCode: code, ResponseData: responseData}, nil
	}
	return storage.IdempotencyLookup{}, storage.ErrIdempotencyInProgress
}

// CompleteIdempotency stores the final response for a reserved key.
func (db *DB) CompleteIdempotency(ctx context.Context, ownerID uuid.UUID, endpoint, key string, statusCode int, responseData any) error {
	payload, err := json.Marshal(responseData)
	if err != nil {
		return fmt.Errorf("storage: marshal idempotency response: %w", err)
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE idempotency_keys
		 SET status = 'completed',
		     status_code = $4,
		     response_data = $5::jsonb,
		     updated_at = now()
		 WHERE owner_id = $1 AND endpoint = $2 AND idempotency_key = $3
		   AND status = 'in_progress'`,
		ownerID, endpoint, key, statusCode, payload,
	)
	if err != nil {
		return fmt.Errorf("storage: complete idempotency: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("storage: complete idempotency: key not found or not in_progress")
	}
	return nil
}

// ClearInProgressIdempotency removes an in-progress reservation.
func (db *DB) ClearInProgressIdempotency(ctx context.Context, ownerID uuid.UUID, endpoint, key string) error {
	if _, err := db.pool.Exec(ctx,
		`DELETE FROM idempotency_keys
		 WHERE owner_id = $1 AND endpoint = $2 AND idempotency_key = $3
		   AND status = 'in_progress'`,
		ownerID, endpoint, key,
	); err != nil {
		return fmt.Errorf("storage: clear idempotency: %w", err)
	}
	return nil
}

// CleanupIdempotencyKeys removes old completed and abandoned in-progress keys.
func (db *DB) CleanupIdempotencyKeys(ctx context.Context, completedTTL, inProgressTTL time.Duration) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM idempotency_keys
		 WHERE (status = 'completed' AND updated_at < now() - ($1 * interval '1 microsecond'))
		    OR (status = 'in_progress' AND updated_at < now() - ($2 * interval '1 microsecond'))`,
		completedTTL.Microseconds(), inProgressTTL.Microseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cleanup idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
