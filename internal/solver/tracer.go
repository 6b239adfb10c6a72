package solver

// Tracer is an append-only builder for a solve trace. A Tracer belongs to a
// single solve call and must not be shared.
type Tracer struct {
	steps []Step
}

// NewTracer returns a Tracer with room for hint steps.
func NewTracer(hint int) *Tracer {
	return &Tracer{steps: make([]Step, 0, hint)}
}

// Record appends a step and returns it. Indexes start at 0 and increase by one
// per call. The snapshot is copied, so callers may keep mutating their slice.
func (t *Tracer) Record(description, decision string, snapshot []SelectedItem, runningWeight, runningValue float64, extra StepExtra) Step {
	selected := make([]SelectedItem, len(snapshot))
	copy(selected, snapshot)

	s := Step{
		Index:         len(t.steps),
		Description:   description,
		Decision:      decision,
		SelectedSoFar: selected,
		RunningWeight: runningWeight,
		RunningValue:  runningValue,
		Extra:         extra,
	}
	t.steps = append(t.steps, s)
	return s
}

// Steps returns the full recorded trace. The Tracer should not be used after.
func (t *Tracer) Steps() []Step {
	if t.steps == nil {
		return []Step{}
	}
	return t.steps
}

func float64Ptr(v float64) *float64 { return &v }
