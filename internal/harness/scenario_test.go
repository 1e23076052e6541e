package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/jump.yaml")
	require.NoError(t, err)

	assert.Equal(t, "jump", s.Name)
	assert.Equal(t, filepath.Join("testdata", "bindings", "platformer.yaml"), s.Bindings)
	require.Len(t, s.Steps, 4)
	assert.Equal(t, []string{"keyboard.space"}, s.Steps[0].Press)
	assert.Equal(t, []string{"jump"}, s.Steps[0].ExpectFired)
	assert.True(t, s.Steps[1].ExpectNothing)
	require.Len(t, s.Assertions, 2)
	assert.Equal(t, AssertFiredCount, s.Assertions[0].Type)
	assert.Equal(t, 2, s.Assertions[0].Count)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MissingBindings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	content := `
name: orphan
description: "Points at bindings that do not exist"
bindings: missing.yaml
steps:
  - press: [keyboard.a]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bindings file not found")
}

func TestParseScenario_InlineBindings(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: inline
description: "Bindings declared in the scenario"
tick_ms: 10
max_fires_per_tick: 1
inline_bindings:
  conditions:
    - {name: a, kind: pressed, source: keyboard, signal: a}
steps:
  - at_ms: 5
    focused: false
    press: [keyboard.a]
    set: {mouse.scroll: {x: 0, y: 1}}
`))
	require.NoError(t, err)
	require.NotNil(t, s.InlineBindings)
	assert.Equal(t, "a", s.InlineBindings.Conditions[0].Name)
	assert.Equal(t, int64(10), s.TickMS)
	assert.Equal(t, 1, s.MaxFiresPerTick)
	require.NotNil(t, s.Steps[0].AtMS)
	assert.Equal(t, int64(5), *s.Steps[0].AtMS)
	require.NotNil(t, s.Steps[0].Focused)
	assert.False(t, *s.Steps[0].Focused)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\ndescription: d\nbindings: b.yaml\nstepz: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: d\nbindings: b.yaml\nsteps: [{press: [keyboard.a]}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: x\nbindings: b.yaml\nsteps: [{press: [keyboard.a]}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no bindings",
			yaml:    "name: x\ndescription: d\nsteps: [{press: [keyboard.a]}]\n",
			wantErr: "exactly one of bindings and inline_bindings",
		},
		{
			name:    "both bindings",
			yaml:    "name: x\ndescription: d\nbindings: b.yaml\ninline_bindings: {conditions: []}\nsteps: [{press: [keyboard.a]}]\n",
			wantErr: "exactly one of bindings and inline_bindings",
		},
		{
			name:    "no steps",
			yaml:    "name: x\ndescription: d\nbindings: b.yaml\n",
			wantErr: "steps list is required",
		},
		{
			name:    "time goes backwards",
			yaml:    "name: x\ndescription: d\nbindings: b.yaml\nsteps: [{at_ms: 20}, {at_ms: 10}]\n",
			wantErr: "must be after the previous step",
		},
		{
			name:    "bad input key",
			yaml:    "name: x\ndescription: d\nbindings: b.yaml\nsteps: [{press: [space]}]\n",
			wantErr: "must be source.signal",
		},
		{
			name:    "unknown family",
			yaml:    "name: x\ndescription: d\nbindings: b.yaml\nsteps: [{set: {joystick.x: 1}}]\n",
			wantErr: "unknown device family",
		},
		{
			name:    "conflicting expectations",
			yaml:    "name: x\ndescription: d\nbindings: b.yaml\nsteps: [{expect_nothing: true, expect_fired: [a]}]\n",
			wantErr: "expect_nothing conflicts",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: x\ndescription: d\nbindings: b.yaml\nsteps: [{}]\nassertions: [{type: trace_contains}]\n",
			wantErr: "unknown assertion type",
		},
		{
			name:    "fire_order needs two",
			yaml:    "name: x\ndescription: d\nbindings: b.yaml\nsteps: [{}]\nassertions: [{type: fire_order, conditions: [a]}]\n",
			wantErr: "at least two conditions",
		},
		{
			name:    "fired_count needs condition",
			yaml:    "name: x\ndescription: d\nbindings: b.yaml\nsteps: [{}]\nassertions: [{type: fired_count, count: 1}]\n",
			wantErr: "condition is required for fired_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseInputKey(t *testing.T) {
	src, sig, err := ParseInputKey("gamepad.left_stick")
	require.NoError(t, err)
	assert.Equal(t, device.Gamepad, src)
	assert.Equal(t, device.Signal("left_stick"), sig)

	// Only the first dot separates; voice phrases may contain more.
	src, sig, err = ParseInputKey("voice.open map.now")
	require.NoError(t, err)
	assert.Equal(t, device.Voice, src)
	assert.Equal(t, device.Signal("open map.now"), sig)

	for _, bad := range []string{"", "keyboard", "keyboard.", "none.a", "pen.tip"} {
		_, _, err := ParseInputKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestFindScenarios(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "scenarios", "jump.yaml"),
		filepath.Join("testdata", "scenarios", "sprint.yaml"),
		filepath.Join("testdata", "scenarios", "trigger_dwell.yaml"),
	}, paths)
}
