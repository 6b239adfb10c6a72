package solver

import (
	"math"
)

// Validate checks p against the structural and resource limits, in order,
// and returns the first failure as a *ValidationError. It has no side effects.
//
// Order:
//  1. items non-empty
//  2. at most MaxItems items
//  3. capacity > 0
//  4. capacity ≤ MaxCapacity
//  5. every item: finite, 0 < weight ≤ MaxWeight, 0 ≤ value ≤ MaxValue
//  6. item ids unique
//  7. algorithm is Exact, Greedy or Fractional
//  8. Exact only: capacity ≤ MaxExactCapacity, both raw and in integer units
func Validate(p Problem) error {
	if len(p.Items) == 0 {
		return invalid(KindEmptyItems, "items", "items list cannot be empty")
	}
	if len(p.Items) > MaxItems {
		return invalid(KindTooManyItems, "items", "got %d items, maximum allowed is %d", len(p.Items), MaxItems)
	}

	if math.IsNaN(p.Capacity) || p.Capacity <= 0 {
		return invalid(KindInvalidCapacity, "capacity", "capacity must be greater than 0")
	}
	if p.Capacity > MaxCapacity {
		return invalid(KindCapacityTooLarge, "capacity", "capacity %g exceeds maximum %d", p.Capacity, MaxCapacity)
	}

	for _, it := range p.Items {
		if err := validateItem(it); err != nil {
			return err
		}
	}

	seen := make(map[int64]struct{}, len(p.Items))
	for _, it := range p.Items {
		if _, dup := seen[it.ID]; dup {
			return invalidItem(KindDuplicateItemID, it.ID, "items.id", "duplicate item id %d", it.ID)
		}
		seen[it.ID] = struct{}{}
	}

	if !p.Algorithm.Valid() {
		return invalid(KindInvalidAlgorithm, "algorithm_type",
			"invalid algorithm %q, must be one of: %s, %s, %s", p.Algorithm, Exact, Greedy, Fractional)
	}

	if p.Algorithm == Exact {
		if p.Capacity > MaxExactCapacity {
			return invalid(KindCapacityTooLargeForExact, "capacity",
				"capacity %g exceeds %d for %s, use %s or %s instead", p.Capacity, MaxExactCapacity, Exact, Greedy, Fractional)
		}
		if _, err := exactUnits(p.Capacity, p.Items); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(it Item) error {
	switch {
	case math.IsNaN(it.Weight) || math.IsInf(it.Weight, 0):
		return invalidItem(KindInvalidItem, it.ID, "items.weight", "weight must be a finite number")
	case math.IsNaN(it.Value) || math.IsInf(it.Value, 0):
		return invalidItem(KindInvalidItem, it.ID, "items.value", "value must be a finite number")
	case it.Weight <= 0:
		return invalidItem(KindInvalidItem, it.ID, "items.weight", "weight must be greater than 0")
	case it.Weight > MaxWeight:
		return invalidItem(KindInvalidItem, it.ID, "items.weight", "weight %g exceeds maximum %d", it.Weight, MaxWeight)
	case it.Value < 0:
		return invalidItem(KindInvalidItem, it.ID, "items.value", "value must be 0 or greater")
	case it.Value > MaxValue:
		return invalidItem(KindInvalidItem, it.ID, "items.value", "value %g exceeds maximum %d", it.Value, MaxValue)
	}
	return nil
}
