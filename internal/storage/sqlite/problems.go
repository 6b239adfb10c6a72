package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ashita-ai/knapsack/internal/model"
	"github.com/ashita-ai/knapsack/internal/solver"
	"github.com/ashita-ai/knapsack/internal/storage"
)

type problemRow struct {
	Seq       int64   `db:"seq"`
	ID        string  `db:"id"`
	OwnerID   string  `db:"owner_id"`
	Items     []byte  `db:"items"`
	Capacity  float64 `db:"capacity"`
	Algorithm string  `db:"algorithm_type"`
	Solution  []byte  `db:"solution"`
	CreatedAt int64   `db:"created_at"`
}

func (r problemRow) toModel() (model.ProblemRecord, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return model.ProblemRecord{}, fmt.Errorf("storage: parse problem id %q: %w", r.ID, err)
	}
	owner, err := uuid.Parse(r.OwnerID)
	if err != nil {
		return model.ProblemRecord{}, fmt.Errorf("storage: parse owner id %q: %w", r.OwnerID, err)
	}
	rec := model.ProblemRecord{
		ID:        id,
		OwnerID:   owner,
		Capacity:  r.Capacity,
		Algorithm: solver.Algorithm(r.Algorithm),
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
	}
	if err := storage.DecodeProblem(&rec, storage.EncodedProblem{Items: r.Items, Solution: r.Solution}); err != nil {
		return model.ProblemRecord{}, err
	}
	return rec, nil
}

// SaveProblem inserts a solved problem for ownerID.
func (s *Store) SaveProblem(ctx context.Context, ownerID uuid.UUID, p solver.Problem, sol solver.Solution) (model.ProblemRecord, error) {
	rec := model.NewProblemRecord(ownerID, p, sol)
	enc, err := storage.EncodeProblem(rec)
	if err != nil {
		return model.ProblemRecord{}, err
	}

	if _, err := s.db.NamedExecContext(ctx,
		`INSERT INTO problems (id, owner_id, items, capacity, algorithm_type, solution, created_at)
		 VALUES (:id, :owner_id, :items, :capacity, :algorithm_type, :solution, :created_at)`,
		problemRow{
			ID:        rec.ID.String(),
			OwnerID:   rec.OwnerID.String(),
			Items:     enc.Items,
			Capacity:  rec.Capacity,
			Algorithm: string(rec.Algorithm),
			Solution:  enc.Solution,
			CreatedAt: rec.CreatedAt.UnixNano(),
		},
	); err != nil {
		return model.ProblemRecord{}, fmt.Errorf("storage: save problem: %w", err)
	}
	return rec, nil
}

// ListProblems returns ownerID's problems, newest first.
func (s *Store) ListProblems(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]model.ProblemRecord, int, error) {
	var (
		total int
		rows  []problemRow
	)
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &total,
			`SELECT count(*) FROM problems WHERE owner_id = ?`, ownerID.String()); err != nil {
			return fmt.Errorf("storage: count problems: %w", err)
		}
		if err := tx.SelectContext(ctx, &rows,
			`SELECT * FROM problems WHERE owner_id = ?
			 ORDER BY created_at DESC, seq DESC
			 LIMIT ? OFFSET ?`,
			ownerID.String(), limit, offset); err != nil {
			return fmt.Errorf("storage: list problems: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	out := make([]model.ProblemRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.toModel()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, nil
}

// GetProblem returns one of ownerID's problems.
func (s *Store) GetProblem(ctx context.Context, ownerID, id uuid.UUID) (model.ProblemRecord, error) {
	var row problemRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM problems WHERE id = ? AND owner_id = ?`, id.String(), ownerID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProblemRecord{}, fmt.Errorf("storage: problem %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return model.ProblemRecord{}, fmt.Errorf("storage: get problem: %w", err)
	}
	return row.toModel()
}
