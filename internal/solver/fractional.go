package solver

import "fmt"

// solveFractional fills the capacity in ratio order. The first item that does
// not fit whole is split to exactly fill what remains, and nothing after it
// is considered. Fit and the split fraction are computed in integer units, so
// an item that fits exactly is taken whole.
//
// Complexity: O(n log n) time, O(n) space.
func solveFractional(items []Item, u units) ([]SelectedItem, []Step) {
	ranked := Rank(items)
	tr := NewTracer(len(ranked))
	selected := make([]SelectedItem, 0, len(ranked))
	var (
		used  int64
		value float64
	)

	for _, it := range ranked {
		remaining := u.capacity - used
		if remaining <= 0 {
			break
		}

		w := u.weight(it.Weight)
		if w <= remaining {
			selected = append(selected, SelectedItem{Item: it, Fraction: 1})
			used += w
			value += it.Value
			tr.Record(
				fmt.Sprintf("Taking full item %d (weight=%g, value=%g)", it.ID, it.Weight, it.Value),
				fmt.Sprintf("include item %d", it.ID),
				selected, u.quantity(used), value,
				StepExtra{RemainingCapacity: float64Ptr(u.quantity(u.capacity - used)), Ratio: float64Ptr(it.Ratio())},
			)
			continue
		}

		f := float64(remaining) / float64(w)
		s := SelectedItem{Item: it, Fraction: f}
		selected = append(selected, s)
		used = u.capacity
		taken := u.takenValue(s)
		value += taken
		tr.Record(
			fmt.Sprintf("Taking %.1f%% of item %d (weight=%g, value=%.2f)", f*100, it.ID, u.quantity(remaining), taken),
			fmt.Sprintf("include %.1f%% of item %d", f*100, it.ID),
			selected, u.quantity(used), value,
			StepExtra{RemainingCapacity: float64Ptr(0), Ratio: float64Ptr(it.Ratio()), Fraction: float64Ptr(f)},
		)
		break
	}
	return selected, tr.Steps()
}
