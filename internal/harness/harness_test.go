package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadAndRun(t *testing.T, path string) *Result {
	t.Helper()
	s, err := LoadScenario(path)
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)
	return result
}

func TestRun_Scenarios(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			result := loadAndRun(t, path)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_JumpTrace(t *testing.T) {
	result := loadAndRun(t, "testdata/scenarios/jump.yaml")
	require.Len(t, result.Trace, 2)
	assert.Equal(t, 4, result.Ticks)

	first := result.Trace[0]
	assert.Equal(t, TraceEvent{
		Step:      0,
		Frame:     1,
		AtMS:      0,
		Condition: "jump",
		ID:        "evt-1",
		Source:    "keyboard",
		Signal:    "space",
		Value:     true,
		ElapsedMS: 0,
	}, first)

	second := result.Trace[1]
	assert.Equal(t, 3, second.Step)
	assert.Equal(t, int64(4), second.Frame)
	assert.Equal(t, int64(48), second.AtMS)
	assert.Equal(t, "evt-2", second.ID)
}

func TestRun_ChordRecordsChildren(t *testing.T) {
	result := loadAndRun(t, "testdata/scenarios/sprint.yaml")
	require.Len(t, result.Trace, 2)

	chord := result.Trace[0]
	assert.Equal(t, "sprint", chord.Condition)
	assert.Empty(t, chord.Signal)
	assert.Equal(t, []string{"keyboard.shift", "keyboard.w"}, chord.Children)

	stick := result.Trace[1]
	assert.Equal(t, "gamepad", stick.Source)
	assert.Equal(t, "left_stick", stick.Signal)
	assert.Equal(t, map[string]any{"x": 0.9, "y": 0.0}, stick.Value)
}

func TestRun_RepeatAndDwell(t *testing.T) {
	result := loadAndRun(t, "testdata/scenarios/trigger_dwell.yaml")
	assert.Equal(t, 6, result.Ticks)
	require.NotEmpty(t, result.Trace)

	first := result.Trace[0]
	assert.Equal(t, "fire", first.Condition)
	assert.Equal(t, int64(264), first.AtMS)
	assert.Equal(t, int64(64), first.ElapsedMS)
}

func TestRun_ExpectationFailuresAreReported(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong
description: "Expects the wrong things"
inline_bindings:
  conditions:
    - {name: a, kind: pressed, source: keyboard, signal: a}
    - {name: b, kind: pressed, source: keyboard, signal: b}
steps:
  - press: [keyboard.a]
    expect_fired: [b]
    expect_not_fired: [a]
  - expect_nothing: true
assertions:
  - type: never_fired
    condition: a
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "step 0: expected b to fire")
	assert.Contains(t, result.Errors[1], "step 0: expected a not to fire")
	assert.Contains(t, result.Errors[2], "step 1: expected no fires")
	assert.Contains(t, result.Errors[3], "Assertion failed: never_fired")
}

func TestRun_FocusAndPulse(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: focus
description: "Focus-gated conditions wait for the window"
inline_bindings:
  conditions:
    - {name: menu, kind: pressed, source: keyboard, signal: m, window_must_be_active: true}
    - {name: tap, kind: press_started, source: touch, signal: tap}
steps:
  - focused: false
    press: [keyboard.m]
    pulse: {touch.tap: true}
    expect_fired: [tap]
    expect_not_fired: [menu]
  - focused: true
    expect_fired: [menu]
    expect_not_fired: [tap]
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_FireBudget(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: budget
description: "Only the first fire in registry order is dispatched"
max_fires_per_tick: 1
inline_bindings:
  conditions:
    - {name: a, kind: pressed, source: keyboard, signal: a}
    - {name: b, kind: pressed, source: keyboard, signal: b}
steps:
  - press: [keyboard.a, keyboard.b]
    expect_fired: [a]
    expect_not_fired: [b]
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, 1)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "invalid bindings",
			yaml: `
name: bad
description: d
inline_bindings:
  conditions:
    - {name: a, kind: hover, source: keyboard, signal: a}
steps: [{}]
`,
			wantErr: "bindings",
		},
		{
			name: "unconfigured family",
			yaml: `
name: bad
description: d
inline_bindings:
  conditions:
    - {name: a, kind: pressed, source: keyboard, signal: a}
steps:
  - press: [gamepad.a]
`,
			wantErr: "device family gamepad is not configured",
		},
		{
			name: "implicit time overtakes at_ms",
			yaml: `
name: bad
description: d
inline_bindings:
  conditions:
    - {name: a, kind: pressed, source: keyboard, signal: a}
steps:
  - {}
  - {}
  - at_ms: 10
`,
			wantErr: "is not after the previous tick",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseScenario([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = Run(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResult_Fired(t *testing.T) {
	r := NewResult()
	r.AddFire(TraceEvent{Step: 0, Condition: "a"})
	r.AddFire(TraceEvent{Step: 1, Condition: "b"})
	r.AddFire(TraceEvent{Step: 1, Condition: "c"})

	assert.Equal(t, []string{"b", "c"}, r.Fired(1))
	assert.Nil(t, r.Fired(2))
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
}
