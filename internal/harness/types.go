package harness

// TraceEvent is one dispatched fire in a scenario run.
type TraceEvent struct {
	Step      int    `json:"step"`
	Frame     int64  `json:"frame"`
	AtMS      int64  `json:"at_ms"`
	Condition string `json:"condition"`
	ID        string `json:"id"`
	Source    string `json:"source,omitempty"`
	Signal    string `json:"signal,omitempty"`
	Value     any    `json:"value,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`

	// Children lists the contributing children's signals for all
	// conditions, in child order.
	Children []string `json:"children,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every step expectation and assertion holds.
	Pass bool `json:"pass"`

	// Trace contains every fire in tick order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Ticks is the number of ticks driven.
	Ticks int `json:"ticks"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddFire appends a fire to the trace.
func (r *Result) AddFire(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}

// Fired returns the names of the conditions that fired in step, in order.
func (r *Result) Fired(step int) []string {
	var out []string
	for _, ev := range r.Trace {
		if ev.Step == step {
			out = append(out, ev.Condition)
		}
	}
	return out
}
