package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeTrace(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTraceText(t *testing.T) {
	out, err := executeTrace(t, "text", "testdata/scenarios/sprint.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Scenario: sprint")
	assert.Contains(t, out, "[frame 2 @ 16ms] evt-1 sprint (keyboard.shift + keyboard.w)")
	assert.Contains(t, out, "evt-2 sprint gamepad.left_stick=")
	assert.Contains(t, out, "Ticks: 4")
	assert.Contains(t, out, "sprint: 2")
}

func TestTraceJSONWithFilter(t *testing.T) {
	out, err := executeTrace(t, "json", "testdata/scenarios/jump.yaml", "--condition", "double_jump")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "jump", resp.Data.Scenario)
	assert.True(t, resp.Data.Pass)
	assert.Empty(t, resp.Data.Timeline)
	assert.Equal(t, 0, resp.Data.Stats.TotalFires)
	assert.Equal(t, 4, resp.Data.Stats.Ticks)
}

func TestTraceMissingScenario(t *testing.T) {
	_, err := executeTrace(t, "text", "testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
