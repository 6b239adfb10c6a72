package solver

var complexities = map[Algorithm]Complexity{
	Exact: {
		Time:    "O(n * capacity)",
		Space:   "O(n * capacity)",
		Optimal: true,
		Note:    "Optimal solution for 0/1 knapsack",
	},
	Greedy: {
		Time:    "O(n log n)",
		Space:   "O(n)",
		Optimal: false,
		Note:    "Heuristic solution - may not be optimal for 0/1 knapsack",
	},
	Fractional: {
		Time:    "O(n log n)",
		Space:   "O(n)",
		Optimal: true,
		Note:    "Optimal solution for fractional knapsack",
	},
}

// ComplexityOf returns the static cost descriptor for alg.
func ComplexityOf(alg Algorithm) (Complexity, bool) {
	c, ok := complexities[alg]
	return c, ok
}

// Assemble packages a selection and its trace into a Solution. Totals are
// Σ weight·fraction and Σ value·fraction over selected, in order. The weight
// is summed in p's integer units and converted once, so a selection that fits
// the capacity in units reports TotalWeight <= p.Capacity exactly. No
// validation is performed.
func Assemble(p Problem, selected []SelectedItem, steps []Step, alg Algorithm) Solution {
	if selected == nil {
		selected = []SelectedItem{}
	}
	if steps == nil {
		steps = []Step{}
	}
	u := problemUnits(p.Capacity, p.Items)
	var (
		used  int64
		value float64
	)
	for _, s := range selected {
		used += u.taken(s)
		value += u.takenValue(s)
	}
	return Solution{
		Selected:    selected,
		TotalWeight: u.quantity(used),
		TotalValue:  value,
		Steps:       steps,
		Algorithm:   alg,
		Complexity:  complexities[alg],
	}
}
