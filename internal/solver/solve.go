package solver

import (
	"fmt"
	"math"
)

// Solve validates p and runs the requested algorithm. It returns either a
// complete Solution or an error, never both: a *ValidationError for rejected
// input, or an error wrapping ErrInternal for an unexpected failure.
func Solve(p Problem) (sol Solution, err error) {
	if err := Validate(p); err != nil {
		return Solution{}, err
	}

	defer func() {
		if r := recover(); r != nil {
			sol, err = Solution{}, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	var (
		selected []SelectedItem
		steps    []Step
	)
	switch p.Algorithm {
	case Exact:
		u, err := exactUnits(p.Capacity, p.Items)
		if err != nil {
			return Solution{}, err
		}
		selected, steps = solveExact(p.Items, u)
	case Greedy:
		selected, steps = solveGreedy(p.Items, problemUnits(p.Capacity, p.Items))
	case Fractional:
		selected, steps = solveFractional(p.Items, problemUnits(p.Capacity, p.Items))
	default:
		return Solution{}, fmt.Errorf("%w: unhandled algorithm %q", ErrInternal, p.Algorithm)
	}

	sol = Assemble(p, selected, steps, p.Algorithm)
	if !finite(sol.TotalWeight) || !finite(sol.TotalValue) {
		return Solution{}, fmt.Errorf("%w: non-finite totals", ErrInternal)
	}
	return sol, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
