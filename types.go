package knapsack

import "github.com/ashita-ai/knapsack/internal/solver"

// Engine types, re-exported for callers outside this module.
type (
	Item         = solver.Item
	Problem      = solver.Problem
	Algorithm    = solver.Algorithm
	Solution     = solver.Solution
	SelectedItem = solver.SelectedItem
	Step         = solver.Step
	StepExtra    = solver.StepExtra
	Complexity   = solver.Complexity

	// ValidationError reports why a problem was rejected.
	ValidationError = solver.ValidationError
	ErrorKind       = solver.ErrorKind
)

// Algorithms.
const (
	Exact      = solver.Exact
	Greedy     = solver.Greedy
	Fractional = solver.Fractional
)

// Sentinel errors; match with errors.Is.
var (
	ErrEmptyItems               = solver.ErrEmptyItems
	ErrTooManyItems             = solver.ErrTooManyItems
	ErrInvalidCapacity          = solver.ErrInvalidCapacity
	ErrCapacityTooLarge         = solver.ErrCapacityTooLarge
	ErrInvalidItem              = solver.ErrInvalidItem
	ErrDuplicateItemID          = solver.ErrDuplicateItemID
	ErrInvalidAlgorithm         = solver.ErrInvalidAlgorithm
	ErrCapacityTooLargeForExact = solver.ErrCapacityTooLargeForExact
	ErrInternal                 = solver.ErrInternal
)

// Solve validates p and runs the requested algorithm. It is pure and safe
// for concurrent use.
func Solve(p Problem) (Solution, error) {
	return solver.Solve(p)
}
