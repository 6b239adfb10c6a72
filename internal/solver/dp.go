package solver

import (
	"fmt"
)

// solveExact solves the 0/1 problem by tabulation over integer units.
//
// best[i][c] is the best value using the first i items in submission order
// within c units:
//
//	best[i][c] = best[i-1][c]                                  if w_i > c
//	best[i][c] = max(best[i-1][c], best[i-1][c-w_i] + v_i)     otherwise
//
// One step is recorded per item once its row is complete. The decision is
// "include" when the row improved the full-capacity cell, best[i][C] >
// best[i-1][C]. The step's selection is the optimal partial selection over
// items 1..i at the full capacity, reconstructed with ties resolved toward
// inclusion, so on a tie the snapshot may take item i while the decision
// reports a skip. Extra.Added and Extra.Removed carry the snapshot change.
//
// Complexity: O(n·C) time and space, plus O(n²) for per-row reconstruction.
func solveExact(items []Item, u units) ([]SelectedItem, []Step) {
	n, width := len(items), int(u.capacity)+1
	weights := make([]int, n)
	for i, it := range items {
		weights[i] = int(u.weight(it.Weight))
	}
	best := make([]float64, (n+1)*width)

	tr := NewTracer(n)
	var prev []SelectedItem

	for i := 1; i <= n; i++ {
		w, v := weights[i-1], items[i-1].Value
		row, up := best[i*width:(i+1)*width], best[(i-1)*width:i*width]
		copy(row, up)
		for c := w; c < width; c++ {
			if take := up[c-w] + v; take > row[c] {
				row[c] = take
			}
		}

		snapshot := reconstruct(items, weights, best, width, i)
		added, removed := diffSelection(prev, snapshot)

		it := items[i-1]
		decision := fmt.Sprintf("skip item %d", it.ID)
		if row[width-1] > up[width-1] {
			decision = fmt.Sprintf("include item %d", it.ID)
		}

		var used int64
		var rv float64
		for _, s := range snapshot {
			used += u.taken(s)
			rv += s.Value
		}

		tr.Record(
			fmt.Sprintf("Processed item %d (weight=%g, value=%g), row %d of %d", it.ID, it.Weight, it.Value, i, n),
			decision, snapshot, u.quantity(used), rv,
			StepExtra{
				DPState: fmt.Sprintf("DP[%d][%d] = %g", i, width-1, row[width-1]),
				Added:   added,
				Removed: removed,
			},
		)
		prev = snapshot
	}

	if prev == nil {
		prev = []SelectedItem{}
	}
	return prev, tr.Steps()
}

// reconstruct walks rows upto..1 backward from the full capacity and returns
// the chosen items in submission order. An item is included whenever
// including it reproduces the cell value, even if excluding it would too.
func reconstruct(items []Item, weights []int, best []float64, width, upto int) []SelectedItem {
	c := width - 1
	picked := make([]int, 0, upto)
	for k := upto; k >= 1; k-- {
		w := weights[k-1]
		if w > c {
			continue
		}
		if best[k*width+c] == best[(k-1)*width+c-w]+items[k-1].Value {
			picked = append(picked, k-1)
			c -= w
		}
	}

	out := make([]SelectedItem, len(picked))
	for j, idx := range picked {
		out[len(picked)-1-j] = SelectedItem{Item: items[idx], Fraction: 1}
	}
	return out
}

// diffSelection lists the ids present only in next (added) and only in prev
// (removed), each in the order they appear.
func diffSelection(prev, next []SelectedItem) (added, removed []int64) {
	inPrev := make(map[int64]struct{}, len(prev))
	for _, s := range prev {
		inPrev[s.ID] = struct{}{}
	}
	inNext := make(map[int64]struct{}, len(next))
	for _, s := range next {
		inNext[s.ID] = struct{}{}
		if _, ok := inPrev[s.ID]; !ok {
			added = append(added, s.ID)
		}
	}
	for _, s := range prev {
		if _, ok := inNext[s.ID]; !ok {
			removed = append(removed, s.ID)
		}
	}
	return added, removed
}
