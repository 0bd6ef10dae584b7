package harness

// Trace event types.
const (
	EventAssign = "assign"
	EventSearch = "search"
)

// TraceEvent records one assignment batch or one search.
type TraceEvent struct {
	Type string `json:"type"`
	Seq  int64  `json:"seq"`
	// User is the acting user's email, or "" for an anonymous search.
	User     string   `json:"user,omitempty"`
	Q        string   `json:"q,omitempty"`
	Limit    string   `json:"limit,omitempty"`
	IDs      []int    `json:"ids,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Changes  int      `json:"changes,omitempty"`
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace lists the scenario's events in order.
	Trace []TraceEvent `json:"trace"`

	// Errors describes each failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvent appends an event to the trace.
func (r *Result) AddEvent(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}

// Searches returns the search events, in order.
func (r *Result) Searches() []TraceEvent {
	var out []TraceEvent
	for _, e := range r.Trace {
		if e.Type == EventSearch {
			out = append(out, e)
		}
	}
	return out
}
