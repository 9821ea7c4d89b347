package generic

// =============================================================================
// CASCADE - Ordered fallback across heterogeneous sources
// =============================================================================

// Step is one source in a cascade. Resolve returns false when the source does not
// define a value for the input; the cascade then moves on to the next step.
type Step[In, Out any] struct {
	Name    string
	Resolve func(In) (Out, bool)
}

// Cascade is a fixed, ordered list of steps.
type Cascade[In, Out any] []Step[In, Out]

// Run tries each step in order and returns the first defined value together with
// the name of the step that produced it. ok is false if no step defines a value.
func (c Cascade[In, Out]) Run(in In) (out Out, source string, ok bool) {
	for _, step := range c {
		if v, defined := step.Resolve(in); defined {
			return v, step.Name, true
		}
	}
	var zero Out
	return zero, "", false
}

// Names lists the step names in evaluation order.
func (c Cascade[In, Out]) Names() []string {
	names := make([]string, len(c))
	for i, step := range c {
		names[i] = step.Name
	}
	return names
}
