package harness

// TraceEvent records one evaluated step.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Query   string `json:"query"`
	Outcome string `json:"outcome"`
	Expect  string `json:"expect,omitempty"`
	Pass    bool   `json:"pass"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// SessionID is the store session the steps were recorded under.
	SessionID string `json:"session_id"`

	// Stored is the number of evaluations persisted by the run. Repeated
	// queries are answered from the memo and not stored again.
	Stored int64 `json:"stored"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace. Seq is assigned from the trace length.
func (r *Result) AddTrace(query, outcome, expect string, pass bool) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     int64(len(r.Trace) + 1),
		Query:   query,
		Outcome: outcome,
		Expect:  expect,
		Pass:    pass,
	})
}
