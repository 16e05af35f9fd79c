package harness

// Trace event types.
const (
	EventStep    = "step"
	EventOutcome = "outcome"
)

// Step outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// TraceEvent records one step or its outcome.
type TraceEvent struct {
	Type    string         `json:"type"` // "step" or "outcome"
	Op      string         `json:"op"`
	Args    map[string]any `json:"args,omitempty"`
	Outcome string         `json:"outcome,omitempty"`
	Result  map[string]any `json:"result,omitempty"`
	Seq     int64          `json:"seq"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// RunID identifies the run in logs and traces.
	RunID string `json:"run_id"`

	// Trace contains every step and outcome in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State holds the final cart and wishlist of the scenario user.
	State map[string]any `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string]any),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStepTrace records that op was started with args.
func (r *Result) AddStepTrace(op string, args map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type: EventStep,
		Op:   op,
		Args: args,
		Seq:  seq,
	})
}

// AddOutcomeTrace records how op finished.
func (r *Result) AddOutcomeTrace(op, outcome string, result map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:    EventOutcome,
		Op:      op,
		Outcome: outcome,
		Result:  result,
		Seq:     seq,
	})
}
