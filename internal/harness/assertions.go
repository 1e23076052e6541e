package harness

import (
	"fmt"
	"slices"
	"strings"
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

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] step=%d frame=%d at=%dms %s\n",
			i+1, event.Step, event.Frame, event.AtMS, event.Condition)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the trace and returns
// the failures in declaration order.
func EvaluateAssertions(trace []TraceEvent, assertions []Assertion) []error {
	var errs []error
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertFiredCount:
			err = assertFiredCount(trace, a)
		case AssertFireOrder:
			err = assertFireOrder(trace, a)
		case AssertNeverFired:
			err = assertNeverFired(trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func countFires(trace []TraceEvent, name string) int {
	n := 0
	for _, ev := range trace {
		if ev.Condition == name {
			n++
		}
	}
	return n
}

// assertFiredCount checks the condition fired exactly the specified
// number of times.
func assertFiredCount(trace []TraceEvent, a Assertion) error {
	count := countFires(trace, a.Condition)
	if count != a.Count {
		return &AssertionError{
			Type:     AssertFiredCount,
			Expected: fmt.Sprintf("%d fires of %s", a.Count, a.Condition),
			Actual:   fmt.Sprintf("%d fires", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFireOrder checks the conditions first fired in the given order.
// Other fires may appear in between.
func assertFireOrder(trace []TraceEvent, a Assertion) error {
	// First trace position of each expected condition, 1-indexed.
	positions := make(map[string]int)
	for i, ev := range trace {
		if slices.Contains(a.Conditions, ev.Condition) && positions[ev.Condition] == 0 {
			positions[ev.Condition] = i + 1
		}
	}

	for _, name := range a.Conditions {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     AssertFireOrder,
				Expected: fmt.Sprintf("all conditions fired: %v", a.Conditions),
				Actual:   fmt.Sprintf("%s never fired", name),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Conditions); i++ {
		prev, curr := a.Conditions[i-1], a.Conditions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertFireOrder,
				Expected: fmt.Sprintf("conditions in order: %v", a.Conditions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

func assertNeverFired(trace []TraceEvent, a Assertion) error {
	if count := countFires(trace, a.Condition); count > 0 {
		return &AssertionError{
			Type:     AssertNeverFired,
			Expected: fmt.Sprintf("%s never fires", a.Condition),
			Actual:   fmt.Sprintf("%d fires", count),
			Trace:    trace,
		}
	}
	return nil
}

// checkStep compares one step's fires against its expectations.
func checkStep(index int, step Step, fired []string) []string {
	var failures []string
	for _, name := range step.ExpectFired {
		if !slices.Contains(fired, name) {
			failures = append(failures, fmt.Sprintf("step %d: expected %s to fire, fired %v", index, name, fired))
		}
	}
	for _, name := range step.ExpectNotFired {
		if slices.Contains(fired, name) {
			failures = append(failures, fmt.Sprintf("step %d: expected %s not to fire", index, name))
		}
	}
	if step.ExpectNothing && len(fired) > 0 {
		failures = append(failures, fmt.Sprintf("step %d: expected no fires, fired %v", index, fired))
	}
	return failures
}
