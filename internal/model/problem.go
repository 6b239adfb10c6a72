package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ashita-ai/knapsack/internal/solver"
)

// Pagination bounds for history listings.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// ProblemRecord is a saved problem together with the solution computed for it.
type ProblemRecord struct {
	ID        uuid.UUID        `json:"id"`
	OwnerID   uuid.UUID        `json:"user_id"`
	Items     []solver.Item    `json:"items"`
	Capacity  float64          `json:"capacity"`
	Algorithm solver.Algorithm `json:"algorithm_type"`
	Solution  solver.Solution  `json:"solution"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewProblemRecord stamps a fresh id and creation time onto a solved problem.
func NewProblemRecord(owner uuid.UUID, p solver.Problem, sol solver.Solution) ProblemRecord {
	return ProblemRecord{
		ID:        uuid.New(),
		OwnerID:   owner,
		Items:     p.Items,
		Capacity:  p.Capacity,
		Algorithm: p.Algorithm,
		Solution:  sol,
		CreatedAt: time.Now().UTC(),
	}
}
