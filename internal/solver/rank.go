package solver

import (
	"cmp"
	"slices"
)

// Rank returns a copy of items ordered by descending value/weight ratio. Equal
// ratios are ordered by ascending id, so the ranking is the same on every call.
//
// Complexity: O(n log n) time, O(n) space.
func Rank(items []Item) []Item {
	ranked := slices.Clone(items)
	slices.SortStableFunc(ranked, func(a, b Item) int {
		if c := cmp.Compare(b.Ratio(), a.Ratio()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return ranked
}
