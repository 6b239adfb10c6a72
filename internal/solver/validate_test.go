package solver_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/knapsack/internal/solver"
)

func classic(alg solver.Algorithm, capacity float64) solver.Problem {
	return solver.Problem{
		Items: []solver.Item{
			{ID: 1, Weight: 10, Value: 60},
			{ID: 2, Weight: 20, Value: 100},
			{ID: 3, Weight: 30, Value: 120},
		},
		Capacity:  capacity,
		Algorithm: alg,
	}
}

func TestValidate(t *testing.T) {
	manyItems := make([]solver.Item, solver.MaxItems+1)
	for i := range manyItems {
		manyItems[i] = solver.Item{ID: int64(i), Weight: 1, Value: 1}
	}

	tests := []struct {
		name     string
		mutate   func(p *solver.Problem)
		wantKind solver.ErrorKind
		wantErr  error
		wantID   *int64
	}{
		{"valid", func(p *solver.Problem) {}, "", nil, nil},
		{"empty items", func(p *solver.Problem) { p.Items = nil }, solver.KindEmptyItems, solver.ErrEmptyItems, nil},
		{"too many items", func(p *solver.Problem) { p.Items = manyItems }, solver.KindTooManyItems, solver.ErrTooManyItems, nil},
		{"zero capacity", func(p *solver.Problem) { p.Capacity = 0 }, solver.KindInvalidCapacity, solver.ErrInvalidCapacity, nil},
		{"negative capacity", func(p *solver.Problem) { p.Capacity = -5 }, solver.KindInvalidCapacity, solver.ErrInvalidCapacity, nil},
		{"NaN capacity", func(p *solver.Problem) { p.Capacity = math.NaN() }, solver.KindInvalidCapacity, solver.ErrInvalidCapacity, nil},
		{"capacity too large", func(p *solver.Problem) { p.Capacity = 1_000_001 }, solver.KindCapacityTooLarge, solver.ErrCapacityTooLarge, nil},
		{"infinite capacity", func(p *solver.Problem) { p.Capacity = math.Inf(1) }, solver.KindCapacityTooLarge, solver.ErrCapacityTooLarge, nil},
		{"zero weight", func(p *solver.Problem) { p.Items[1].Weight = 0 }, solver.KindInvalidItem, solver.ErrInvalidItem, ptr(2)},
		{"weight too large", func(p *solver.Problem) { p.Items[2].Weight = 1_000_001 }, solver.KindInvalidItem, solver.ErrInvalidItem, ptr(3)},
		{"negative value", func(p *solver.Problem) { p.Items[0].Value = -1 }, solver.KindInvalidItem, solver.ErrInvalidItem, ptr(1)},
		{"value too large", func(p *solver.Problem) { p.Items[0].Value = 1_000_001 }, solver.KindInvalidItem, solver.ErrInvalidItem, ptr(1)},
		{"NaN value", func(p *solver.Problem) { p.Items[1].Value = math.NaN() }, solver.KindInvalidItem, solver.ErrInvalidItem, ptr(2)},
		{"duplicate id", func(p *solver.Problem) { p.Items[2].ID = 1 }, solver.KindDuplicateItemID, solver.ErrDuplicateItemID, ptr(1)},
		{"unknown algorithm", func(p *solver.Problem) { p.Algorithm = "branch_and_bound" }, solver.KindInvalidAlgorithm, solver.ErrInvalidAlgorithm, nil},
		{"exact over ceiling", func(p *solver.Problem) { p.Capacity = 15000 }, solver.KindCapacityTooLargeForExact, solver.ErrCapacityTooLargeForExact, nil},
		{"exact scaled over ceiling", func(p *solver.Problem) { p.Capacity = 100.5; p.Items[0].Weight = 0.25 }, solver.KindCapacityTooLargeForExact, solver.ErrCapacityTooLargeForExact, nil},
		{"exact weight too precise", func(p *solver.Problem) { p.Capacity = 1; p.Items[1].Weight = 0.0000001 }, solver.KindCapacityTooLargeForExact, solver.ErrCapacityTooLargeForExact, ptr(2)},
		{"exact capacity too precise", func(p *solver.Problem) { p.Capacity = 1.0000001 }, solver.KindCapacityTooLargeForExact, solver.ErrCapacityTooLargeForExact, nil},
		{"exact decimals within ceiling", func(p *solver.Problem) { p.Capacity = 50.5; p.Items[0].Weight = 10.25 }, "", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := classic(solver.Exact, 50)
			tt.mutate(&p)

			err := solver.Validate(p)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var verr *solver.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantKind, verr.Kind)
			assert.NotEmpty(t, verr.Field)
			if tt.wantID != nil {
				require.NotNil(t, verr.ItemID)
				assert.Equal(t, *tt.wantID, *verr.ItemID)
			}
		})
	}
}

func TestValidate_ExactPrecisionNamesOffendingField(t *testing.T) {
	p := classic(solver.Exact, 50)
	p.Items[2].Weight = 12.3456789

	var verr *solver.ValidationError
	require.ErrorAs(t, solver.Validate(p), &verr)
	assert.Equal(t, solver.KindCapacityTooLargeForExact, verr.Kind)
	assert.Equal(t, "items.weight", verr.Field)
	require.NotNil(t, verr.ItemID)
	assert.Equal(t, int64(3), *verr.ItemID)

	p = classic(solver.Exact, 49.12345678)
	require.ErrorAs(t, solver.Validate(p), &verr)
	assert.Equal(t, "capacity", verr.Field)
	assert.Nil(t, verr.ItemID)

	// Heuristics accept the same precision.
	p.Algorithm = solver.Greedy
	assert.NoError(t, solver.Validate(p))
}

func TestValidate_OrderShortCircuits(t *testing.T) {
	// Bad capacity, bad item and bad algorithm at once: capacity is checked first.
	p := solver.Problem{
		Items:     []solver.Item{{ID: 1, Weight: -1, Value: 1}},
		Capacity:  0,
		Algorithm: "nope",
	}
	assert.ErrorIs(t, solver.Validate(p), solver.ErrInvalidCapacity)

	// A bad item later in the list is reported before a duplicate earlier on.
	p = solver.Problem{
		Items: []solver.Item{
			{ID: 1, Weight: 1, Value: 1},
			{ID: 1, Weight: 1, Value: 1},
			{ID: 7, Weight: 0, Value: 1},
		},
		Capacity:  10,
		Algorithm: solver.Greedy,
	}
	assert.ErrorIs(t, solver.Validate(p), solver.ErrInvalidItem)
}

func TestValidate_HeuristicsIgnoreExactCeiling(t *testing.T) {
	for _, alg := range []solver.Algorithm{solver.Greedy, solver.Fractional} {
		assert.NoError(t, solver.Validate(classic(alg, 15000)), alg)
	}
}

func TestValidationError_Message(t *testing.T) {
	p := classic(solver.Greedy, 50)
	p.Items[1].Weight = -3
	err := solver.Validate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 2")
	assert.Contains(t, err.Error(), "weight must be greater than 0")
}

func TestParseAlgorithm(t *testing.T) {
	assert.Equal(t, solver.Exact, solver.ParseAlgorithm("exact"))
	assert.Equal(t, solver.Exact, solver.ParseAlgorithm("dp_01"))
	assert.Equal(t, solver.Greedy, solver.ParseAlgorithm("greedy"))
	assert.Equal(t, solver.Fractional, solver.ParseAlgorithm("fractional"))
	assert.False(t, solver.ParseAlgorithm("Greedy").Valid())
	assert.False(t, solver.ParseAlgorithm("").Valid())
}

func ptr(v int64) *int64 { return &v }
