package solver

import (
	"math"
	"strconv"
	"strings"
)

// maxUnitDecimals bounds the unit precision of every algorithm. At 10^-9 the
// largest capacity is 10^15 units, which int64 and float64 both hold exactly.
const maxUnitDecimals = 9

// units is a problem expressed in whole multiples of 10^-decimals. Capacity
// and weights are compared and summed as integer unit counts, so decimal
// inputs such as 0.1 + 0.2 against 0.3 fit exactly.
type units struct {
	decimals int
	factor   float64
	capacity int64
}

// problemUnits picks the finest decimal precision among capacity and weights,
// capped at maxUnitDecimals, and converts the capacity.
func problemUnits(capacity float64, items []Item) units {
	d := decimalPlaces(capacity)
	for _, it := range items {
		d = max(d, decimalPlaces(it.Weight))
	}
	d = min(d, maxUnitDecimals)

	u := units{decimals: d, factor: math.Pow10(d)}
	u.capacity = u.floor(capacity)
	return u
}

// exactUnits is problemUnits for the DP solver. Inputs finer than
// MaxDecimalPlaces, or a capacity above MaxExactCapacity units, fail with
// KindCapacityTooLargeForExact.
func exactUnits(capacity float64, items []Item) (units, error) {
	if d := decimalPlaces(capacity); d > MaxDecimalPlaces {
		return units{}, invalid(KindCapacityTooLargeForExact, "capacity",
			"capacity %g uses %d decimal places, %s supports at most %d", capacity, d, Exact, MaxDecimalPlaces)
	}
	for _, it := range items {
		if d := decimalPlaces(it.Weight); d > MaxDecimalPlaces {
			return units{}, invalidItem(KindCapacityTooLargeForExact, it.ID, "items.weight",
				"weight %g uses %d decimal places, %s supports at most %d", it.Weight, d, Exact, MaxDecimalPlaces)
		}
	}

	u := problemUnits(capacity, items)
	if u.capacity > MaxExactCapacity {
		return units{}, invalid(KindCapacityTooLargeForExact, "capacity",
			"capacity %g is %d units at precision 1e-%d, %s supports at most %d units", capacity, u.capacity, u.decimals, Exact, MaxExactCapacity)
	}
	return u, nil
}

// weight converts an item weight. Weights finer than the unit are rounded,
// never below one unit.
func (u units) weight(w float64) int64 {
	return max(int64(math.Round(w*u.factor)), 1)
}

// floor converts c rounding down, so that u.quantity of the result never
// exceeds c.
func (u units) floor(c float64) int64 {
	n := int64(math.Round(c * u.factor))
	for n > 0 && u.quantity(n) > c {
		n--
	}
	return n
}

// quantity converts n units back. Both operands are exact and the division
// is correctly rounded, so a decimal input with at most u.decimals places
// round-trips to the same float64.
func (u units) quantity(n int64) float64 {
	return float64(n) / u.factor
}

// taken is the number of units s occupies: its whole weight, or for a split
// item the nearest unit count to weight·fraction.
func (u units) taken(s SelectedItem) int64 {
	w := u.weight(s.Weight)
	if s.Fraction >= 1 {
		return w
	}
	return int64(math.Round(float64(w) * s.Fraction))
}

// takenValue is the value s contributes. A split item is valued as
// value·taken/weight in units, which is exact whenever that product is a
// whole number.
func (u units) takenValue(s SelectedItem) float64 {
	if s.Fraction >= 1 {
		return s.Value
	}
	return s.Value * float64(u.taken(s)) / float64(u.weight(s.Weight))
}

// decimalPlaces counts the fractional digits in the shortest decimal
// representation of v.
func decimalPlaces(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}
