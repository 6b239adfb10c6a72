package solver

// Input limits enforced by Validate.
const (
	MaxItems    = 1000
	MaxCapacity = 1_000_000
	MaxWeight   = 1_000_000
	MaxValue    = 1_000_000

	// MaxExactCapacity bounds the DP table width, in integer capacity units.
	MaxExactCapacity = 10_000

	// MaxDecimalPlaces is the finest integer unit (10^-6) the exact solver
	// scales inputs to.
	MaxDecimalPlaces = 6
)

// Algorithm names a solving strategy. The set is closed: Exact, Greedy and
// Fractional are the only valid values.
type Algorithm string

const (
	Exact      Algorithm = "dp_01"
	Greedy     Algorithm = "greedy"
	Fractional Algorithm = "fractional"
)

// ParseAlgorithm maps a wire name to an Algorithm. "exact" is accepted as an
// alias for "dp_01". Unknown names are returned unchanged and fail Valid.
func ParseAlgorithm(name string) Algorithm {
	if name == "exact" {
		return Exact
	}
	return Algorithm(name)
}

// Valid reports whether a is one of the three supported algorithms.
func (a Algorithm) Valid() bool {
	switch a {
	case Exact, Greedy, Fractional:
		return true
	default:
		return false
	}
}

// Item is a candidate for the knapsack.
type Item struct {
	ID     int64   `json:"id"`
	Weight float64 `json:"weight"`
	Value  float64 `json:"value"`
}

// Ratio returns value per unit of weight.
func (it Item) Ratio() float64 {
	return it.Value / it.Weight
}

// Problem is a single solve request.
type Problem struct {
	Items     []Item    `json:"items"`
	Capacity  float64   `json:"capacity"`
	Algorithm Algorithm `json:"algorithm_type"`
}

// SelectedItem is an item in a selection. Fraction is 1 except for the one
// boundary item a fractional solve may split.
type SelectedItem struct {
	Item
	Fraction float64 `json:"fraction"`
}

// StepExtra carries the algorithm-specific part of a Step. Only the fields
// relevant to the producing algorithm are set.
type StepExtra struct {
	// DPState is a snapshot of the DP cell at the final capacity, e.g.
	// "DP[2][50] = 160".
	DPState string `json:"dp_state,omitempty"`
	// Added and Removed list item ids that entered or left the selection
	// relative to the previous step (exact solver only).
	Added   []int64 `json:"added,omitempty"`
	Removed []int64 `json:"removed,omitempty"`

	RemainingCapacity *float64 `json:"remaining_capacity,omitempty"`
	Ratio             *float64 `json:"ratio,omitempty"`
	Fraction          *float64 `json:"fraction,omitempty"`
}

// Step is one recorded decision point.
type Step struct {
	Index         int            `json:"index"`
	Description   string         `json:"description"`
	Decision      string         `json:"decision,omitempty"`
	SelectedSoFar []SelectedItem `json:"selected_so_far"`
	RunningWeight float64        `json:"running_weight"`
	RunningValue  float64        `json:"running_value"`
	Extra         StepExtra      `json:"extra"`
}

// Complexity is the static cost descriptor reported with every solution.
type Complexity struct {
	Time    string `json:"time_complexity"`
	Space   string `json:"space_complexity"`
	Optimal bool   `json:"optimal"`
	Note    string `json:"note"`
}

// Solution is the complete result of a solve.
type Solution struct {
	Selected    []SelectedItem `json:"selected_items"`
	TotalWeight float64        `json:"total_weight"`
	TotalValue  float64        `json:"total_value"`
	Steps       []Step         `json:"steps"`
	Algorithm   Algorithm      `json:"algorithm_used"`
	Complexity  Complexity     `json:"complexity_info"`
}
