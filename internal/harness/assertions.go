package harness

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/papersearch/internal/store"
)

// AssertionContext gives assertions access to the final store.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		if event.Type == EventSearch {
			fmt.Fprintf(&buf, "  [%d] %s %q -> %v\n", event.Seq, event.User, event.Q, event.IDs)
		} else {
			fmt.Fprintf(&buf, "  [%d] %s assign (%d changes)\n", event.Seq, event.User, event.Changes)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertResultOrder:
			err = assertResultOrder(result.Trace, a)
		case AssertTagValues:
			err = assertTagValues(result.Trace, a, actx)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// assertTraceContains checks that some search ran query q.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, e := range trace {
		if e.Type == EventSearch && e.Q == a.Q {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("a search for %q", a.Q),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceCount checks the number of events of one type.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, e := range trace {
		if e.Type == a.Event {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d %s events", a.Count, a.Event),
		Actual:   fmt.Sprintf("%d %s events", n, a.Event),
		Trace:    trace,
	}
}

// assertResultOrder checks that every search for q returned exactly ids.
func assertResultOrder(trace []TraceEvent, a Assertion) error {
	found := false
	for _, e := range trace {
		if e.Type != EventSearch || e.Q != a.Q {
			continue
		}
		found = true
		if !slices.Equal(e.IDs, a.IDs) {
			return &AssertionError{
				Type:     AssertResultOrder,
				Expected: fmt.Sprintf("search %q to return %v", a.Q, a.IDs),
				Actual:   fmt.Sprintf("search %d returned %v", e.Seq, e.IDs),
				Trace:    trace,
			}
		}
	}
	if !found {
		return &AssertionError{
			Type:     AssertResultOrder,
			Expected: fmt.Sprintf("a search for %q", a.Q),
			Actual:   "not found in trace",
			Trace:    trace,
		}
	}
	return nil
}

// assertTagValues checks the final values of a tag in the store.
func assertTagValues(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	if actx == nil || actx.Store == nil {
		return fmt.Errorf("tag_values: no store to query")
	}
	got, err := actx.Store.TagValues(actx.Ctx, a.Tag)
	if err != nil {
		return fmt.Errorf("tag_values: %w", err)
	}
	want := a.Values
	if want == nil {
		want = map[int]float64{}
	}
	if maps.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTagValues,
		Expected: fmt.Sprintf("tag %q values %v", a.Tag, want),
		Actual:   fmt.Sprintf("values %v", got),
		Trace:    trace,
	}
}
