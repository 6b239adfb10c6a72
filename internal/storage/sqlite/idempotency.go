package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ashita-ai/knapsack/internal/storage"
)

type idempotencyRow struct {
	RequestHash  string        `db:"request_hash"`
	Status       string        `db:"status"`
	StatusCode   sql.NullInt64 `db:"status_code"`
	ResponseData []byte        `db:"response_data"`
}

// BeginIdempotency reserves key for ownerID on endpoint, or reports the state
// of an existing reservation.
func (s *Store) BeginIdempotency(ctx context.Context, ownerID uuid.UUID, endpoint, key, requestHash string) (storage.IdempotencyLookup, error) {
	now := time.Now().UTC().UnixNano()
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO idempotency_keys
		 (owner_id, endpoint, idempotency_key, request_hash, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'in_progress', ?, ?)`,
		ownerID.String(), endpoint, key, requestHash, now, now,
	)
	if err != nil {
		return storage.IdempotencyLookup{}, fmt.Errorf("storage: begin idempotency: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return storage.IdempotencyLookup{}, nil // caller owns processing
	}

	var row idempotencyRow
	if err := s.db.GetContext(ctx, &row,
		`SELECT request_hash, status, status_code, response_data
		 FROM idempotency_keys
		 WHERE owner_id = ? AND endpoint = ? AND idempotency_key = ?`,
		ownerID.String(), endpoint, key,
	); err != nil {
		return storage.IdempotencyLookup{}, fmt.Errorf("storage: lookup idempotency: %w", err)
	}

	if row.RequestHash != requestHash {
		return storage.IdempotencyLookup{}, storage.ErrIdempotencyPayloadMismatch
	}
	if row.Status == "completed" {
		return storage.IdempotencyLookup{
			Completed:    true,
			StatusCode:   int(row.StatusCode.Int64),
			ResponseData: row.ResponseData,
		}, nil
	}
	return storage.IdempotencyLookup{}, storage.ErrIdempotencyInProgress
}

// CompleteIdempotency stores the final response for a reserved key.
func (s *Store) CompleteIdempotency(ctx context.Context, ownerID uuid.UUID, endpoint, key string, statusCode int, responseData any) error {
	payload, err := json.Marshal(responseData)
	if err != nil {
		return fmt.Errorf("storage: marshal idempotency response: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE idempotency_keys
		 SET status = 'completed', status_code = ?, response_data = ?, updated_at = ?
		 WHERE owner_id = ? AND endpoint = ? AND idempotency_key = ?
		   AND status = 'in_progress'`,
		statusCode, payload, time.Now().UTC().UnixNano(), ownerID.String(), endpoint, key,
	)
	if err != nil {
		return fmt.Errorf("storage: complete idempotency: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return errors.New("storage: complete idempotency: key not found or not in_progress")
	}
	return nil
}

// ClearInProgressIdempotency removes an in-progress reservation.
func (s *Store) ClearInProgressIdempotency(ctx context.Context, ownerID uuid.UUID, endpoint, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM idempotency_keys
		 WHERE owner_id = ? AND endpoint = ? AND idempotency_key = ?
		   AND status = 'in_progress'`,
		ownerID.String(), endpoint, key,
	); err != nil {
		return fmt.Errorf("storage: clear idempotency: %w", err)
	}
	return nil
}

// CleanupIdempotencyKeys removes old completed and abandoned in-progress keys.
func (s *Store) CleanupIdempotencyKeys(ctx context.Context, completedTTL, inProgressTTL time.Duration) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM idempotency_keys
		 WHERE (status = 'completed' AND updated_at < ?)
		    OR (status = 'in_progress' AND updated_at < ?)`,
		now.Add(-completedTTL).UnixNano(), now.Add(-inProgressTTL).UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cleanup idempotency keys: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cleanup idempotency keys: %w", err)
	}
	return n, nil
}
