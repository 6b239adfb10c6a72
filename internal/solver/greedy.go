package solver

import "fmt"

// solveGreedy takes items whole in ratio order, skipping any that would
// overflow the capacity. Skipped items are never revisited. Fit is decided
// in integer units.
//
// Complexity: O(n log n) time, O(n) space.
func solveGreedy(items []Item, u units) ([]SelectedItem, []Step) {
	ranked := Rank(items)
	tr := NewTracer(len(ranked))
	selected := make([]SelectedItem, 0, len(ranked))
	var (
		used  int64
		value float64
	)

	for _, it := range ranked {
		var description, decision string
		if w := u.weight(it.Weight); used+w <= u.capacity {
			selected = append(selected, SelectedItem{Item: it, Fraction: 1})
			used += w
			value += it.Value
			description = fmt.Sprintf("Item %d fits (ratio=%.2f, weight=%g, value=%g)", it.ID, it.Ratio(), it.Weight, it.Value)
			decision = fmt.Sprintf("include item %d", it.ID)
		} else {
			description = fmt.Sprintf("Item %d does not fit (ratio=%.2f, weight=%g, remaining=%g)", it.ID, it.Ratio(), it.Weight, u.quantity(u.capacity-used))
			decision = fmt.Sprintf("skip item %d (insufficient remaining capacity)", it.ID)
		}
		tr.Record(description, decision, selected, u.quantity(used), value, StepExtra{
			RemainingCapacity: float64Ptr(u.quantity(u.capacity - used)),
			Ratio:             float64Ptr(it.Ratio()),
		})
	}
	return selected, tr.Steps()
}
