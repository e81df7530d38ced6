package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/traitkit/internal/script"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
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

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s => %s\n", event.Seq, event.Query, event.Outcome)
		}
	}

	return buf.String()
}

// normalizeQuery renders a script line the way traces record it.
// Assertions are validated at load time, so the parse cannot fail here
// for scenarios that came through LoadScenario.
func normalizeQuery(line string) string {
	st, err := script.ParseLine(line)
	if err != nil {
		return line
	}
	return st.Query.String()
}

// outcomeMatches reports whether a traced outcome satisfies an expectation.
func outcomeMatches(traced, want string) bool {
	w, err := script.ParseOutcome(want)
	if err != nil {
		return false
	}
	got, err := script.ParseOutcome(traced)
	if err != nil {
		return false
	}
	return script.Matches(w, got)
}

// assertTraceContains checks that some step ran the query, with the given
// outcome when one is specified.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	query := normalizeQuery(assertion.Query)
	for _, event := range trace {
		if event.Query != query {
			continue
		}
		if assertion.Outcome == "" || outcomeMatches(event.Outcome, assertion.Outcome) {
			return nil
		}
	}

	expected := query
	if assertion.Outcome != "" {
		expected += " => " + assertion.Outcome
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that queries ran in the specified order.
// Queries don't need to be consecutive (intervening steps are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if _, seen := positions[event.Query]; !seen {
			positions[event.Query] = i + 1 // 1-indexed for readability
		}
	}

	queries := make([]string, len(assertion.Queries))
	for i, q := range assertion.Queries {
		queries[i] = normalizeQuery(q)
		if positions[queries[i]] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all queries present: %v", queries),
				Actual:   fmt.Sprintf("missing query: %s", queries[i]),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(queries); i++ {
		prev, curr := queries[i-1], queries[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("queries in order: %v", queries),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks that exactly Count steps produced the outcome.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if outcomeMatches(event.Outcome, assertion.Outcome) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d outcomes of %s", assertion.Count, assertion.Outcome),
			Actual:   fmt.Sprintf("%d outcomes", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertStoredCount checks how many evaluations reached the memo store.
func assertStoredCount(stored int64, assertion Assertion) error {
	if stored != int64(assertion.Count) {
		return &AssertionError{
			Type:     AssertStoredCount,
			Expected: fmt.Sprintf("%d stored evaluations", assertion.Count),
			Actual:   fmt.Sprintf("%d stored evaluations", stored),
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertStoredCount:
			err = assertStoredCount(result.Stored, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
