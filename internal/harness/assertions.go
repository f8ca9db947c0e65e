package harness

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/roach88/backlash/internal/ir"
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

	if len(e.Trace) == 0 {
		return buf.String()
	}
	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		switch event.Type {
		case EventDispatch:
			fmt.Fprintf(&buf, "  [%d] %s %s\n", event.Seq, event.Action, canonical(event.Args))
		case EventEffect:
			fmt.Fprintf(&buf, "  [%d]   effect of %s: %s\n", event.Seq, event.Action, event.Outcome)
		}
	}

	return buf.String()
}

// assertTraceContains checks for a dispatch of the action. When args are
// given they must match exactly.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	var want []byte
	if assertion.Args != nil {
		args, err := toIRArray(assertion.Args)
		if err != nil {
			return fmt.Errorf("trace_contains: args: %w", err)
		}
		want = []byte(canonical(args))
	}

	for _, event := range trace {
		if event.Type != EventDispatch || event.Action != assertion.Action {
			continue
		}
		if want == nil || bytes.Equal(want, []byte(canonical(event.Args))) {
			return nil
		}
	}

	expected := "dispatch of " + assertion.Action
	if want != nil {
		expected += " with args " + string(want)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the actions were dispatched in the given order.
// Actions don't need to be consecutive (intervening dispatches are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next == len(assertion.Actions) {
			break
		}
		if event.Type == EventDispatch && event.Action == assertion.Actions[next] {
			next++
		}
	}
	if next == len(assertion.Actions) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
		Actual:   fmt.Sprintf("no %s after %v", assertion.Actions[next], assertion.Actions[:next]),
		Trace:    trace,
	}
}

// assertTraceCount checks if the action was dispatched exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == EventDispatch && event.Action == assertion.Action {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState looks the path up in the canonical snapshot and compares
// the raw JSON found there with the canonical form of the expected value.
func assertFinalState(state ir.IRObject, assertion Assertion) error {
	expected, err := ir.FromGo(assertion.Equals)
	if err != nil {
		return fmt.Errorf("final_state: equals: %w", err)
	}
	want := canonical(expected)

	doc, err := ir.MarshalCanonical(state)
	if err != nil {
		return fmt.Errorf("final_state: snapshot: %w", err)
	}

	got := gjson.GetBytes(doc, assertion.Path)
	if !got.Exists() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %s", assertion.Path, want),
			Actual:   fmt.Sprintf("%s not found in %s", assertion.Path, doc),
		}
	}
	if got.Raw != want {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %s", assertion.Path, want),
			Actual:   fmt.Sprintf("%s = %s", assertion.Path, got.Raw),
		}
	}
	return nil
}

func assertNotificationCount(result *Result, assertion Assertion) error {
	if result.Notifications != assertion.Count {
		return &AssertionError{
			Type:     AssertNotificationCount,
			Expected: fmt.Sprintf("%d notifications", assertion.Count),
			Actual:   fmt.Sprintf("%d notifications", result.Notifications),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertEffectErrors counts effects that did not end ok. When Contains is set
// one of their errors must contain it.
func assertEffectErrors(trace []TraceEvent, assertion Assertion) error {
	var failures []string
	for _, event := range trace {
		if event.Type == EventEffect && event.Outcome != ir.EffectOK {
			failures = append(failures, event.Error)
		}
	}

	if len(failures) != assertion.Count {
		return &AssertionError{
			Type:     AssertEffectErrors,
			Expected: fmt.Sprintf("%d failed effects", assertion.Count),
			Actual:   fmt.Sprintf("%d failed effects %q", len(failures), failures),
			Trace:    trace,
		}
	}
	if assertion.Contains == "" {
		return nil
	}
	for _, msg := range failures {
		if strings.Contains(msg, assertion.Contains) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertEffectErrors,
		Expected: fmt.Sprintf("an effect error containing %q", assertion.Contains),
		Actual:   fmt.Sprintf("%q", failures),
		Trace:    trace,
	}
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
		case AssertFinalState:
			err = assertFinalState(result.State, assertion)
		case AssertNotificationCount:
			err = assertNotificationCount(result, assertion)
		case AssertEffectErrors:
			err = assertEffectErrors(result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func canonical(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}
