package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTrace = []TraceEvent{
	{Step: 0, Frame: 1, Condition: "jump"},
	{Step: 1, Frame: 2, Condition: "sprint"},
	{Step: 1, Frame: 2, Condition: "fire"},
	{Step: 2, Frame: 3, Condition: "jump"},
}

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"count matches", Assertion{Type: AssertFiredCount, Condition: "jump", Count: 2}, ""},
		{"count zero", Assertion{Type: AssertFiredCount, Condition: "dash", Count: 0}, ""},
		{"count differs", Assertion{Type: AssertFiredCount, Condition: "jump", Count: 1}, "2 fires"},
		{"order holds", Assertion{Type: AssertFireOrder, Conditions: []string{"jump", "sprint", "fire"}}, ""},
		{"order broken", Assertion{Type: AssertFireOrder, Conditions: []string{"fire", "sprint"}}, "fire (pos 3) should be before sprint (pos 2)"},
		{"order missing", Assertion{Type: AssertFireOrder, Conditions: []string{"jump", "dash"}}, "dash never fired"},
		{"never fired holds", Assertion{Type: AssertNeverFired, Condition: "dash"}, ""},
		{"never fired broken", Assertion{Type: AssertNeverFired, Condition: "fire"}, "1 fires"},
		{"unknown type", Assertion{Type: "trace_contains"}, "unknown assertion type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleTrace, []Assertion{tt.assertion})
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.wantErr)
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	errs := EvaluateAssertions(sampleTrace, []Assertion{{Type: AssertNeverFired, Condition: "jump"}})
	require.Len(t, errs, 1)

	var ae *AssertionError
	require.ErrorAs(t, errs[0], &ae)
	assert.Equal(t, AssertNeverFired, ae.Type)
	assert.Len(t, ae.Trace, 4)

	msg := ae.Error()
	assert.Contains(t, msg, "Expected: jump never fires")
	assert.Contains(t, msg, "[4] step=2 frame=3 at=0ms jump")
}

func TestCheckStep(t *testing.T) {
	step := Step{ExpectFired: []string{"a"}, ExpectNotFired: []string{"b"}}
	assert.Empty(t, checkStep(0, step, []string{"a", "c"}))

	failures := checkStep(2, step, []string{"b"})
	require.Len(t, failures, 2)
	assert.Equal(t, "step 2: expected a to fire, fired [b]", failures[0])
	assert.Equal(t, "step 2: expected b not to fire", failures[1])

	assert.Empty(t, checkStep(0, Step{ExpectNothing: true}, nil))
	assert.Len(t, checkStep(0, Step{ExpectNothing: true}, []string{"a"}), 1)
}
