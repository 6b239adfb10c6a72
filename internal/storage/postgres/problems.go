package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/solver"
	"github.com/ashita-ai/knapsack/internal/storage"
)

const problemColumns = `id, owner_id, items, capacity, algorithm_type, solution, created_at`

// SaveProblem inserts a solved problem for ownerID.
func (db *DB) SaveProblem(ctx context.Context, ownerID uuid.UUID, p solver.Problem, sol solver.Solution) (model.ProblemRecord, error) {
	rec := model.NewProblemRecord(ownerID, p, sol)
	enc, err := storage.EncodeProblem(rec)
	if err != nil {
		return model.ProblemRecord{}, err
	}

	err = WithRetry(ctx, writeRetries, writeBaseDelay, func() error {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO problems (`+problemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rec.ID, rec.OwnerID, enc.Items, rec.Capacity, string(rec.Algorithm), enc.Solution, rec.CreatedAt,
		)
		return err
	})
	if err != nil {
		return model.ProblemRecord{}, fmt.Errorf("storage: save problem: %w", err)
	}
	return rec, nil
}

// ListProblems returns ownerID's problems, newest first.
func (db *DB) ListProblems(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.ProblemRecord, int, error) {
	var total int
	if err := db.pool.QueryRow(ctx,
		`SELECT count(*) FROM problems WHERE owner_id = $1`, ownerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("storage: count problems: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+problemColumns+` FROM problems
		 WHERE owner_id = $1
		 ORDER BY created_at DESC, seq DESC
		 LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("storage: list problems: %w", err)
	}
	defer rows.Close()

	out := []model.ProblemRecord{}
	for rows.Next() {
		rec, err := scanProblem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("storage: list problems: %w", err)
	}
	return out, total, nil
}

// GetProblem returns one of ownerID's problems.
func (db *DB) GetProblem(ctx context.Context, ownerID, id uuid.UUID) (model.ProblemRecord, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+problemColumns+` FROM problems WHERE id = $1 AND owner_id = $2`, id, ownerID)
	rec, err := scanProblem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ProblemRecord{}, fmt.Errorf("storage: problem %s: %w", id, storage.ErrNotFound)
	}
	return rec, err
}

func scanProblem(row pgx.Row) (model.ProblemRecord, error) {
	var (
		rec model.ProblemRecord
		enc storage.EncodedProblem
		alg string
	)
	if err := row.Scan(&rec.ID, &rec.OwnerID, &enc.Items, &rec.Capacity, &alg, &enc.Solution, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ProblemRecord{}, err
		}
		return model.ProblemRecord{}, fmt.Errorf("storage: scan problem: %w", err)
	}
	rec.Algorithm = solver.Algorithm(alg)
	rec.CreatedAt = rec.CreatedAt.UTC()
	if err := storage.DecodeProblem(&rec, enc); err != nil {
		return model.ProblemRecord{}, err
	}
	return rec, nil
}
