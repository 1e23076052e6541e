package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeReplay(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestReplayDeterministic(t *testing.T) {
	out, err := executeReplay(t, "text", "testdata/scenarios/jump.yaml", "testdata/scenarios/sprint.yaml", "--runs", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ jump: 3 runs, 2 fires each")
	assert.Contains(t, out, "✓ sprint: 3 runs, 2 fires each")
}

func TestReplayJSON(t *testing.T) {
	out, err := executeReplay(t, "json", "testdata/scenarios/jump.yaml")
	require.NoError(t, err)

	var resp struct {
		Data ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.AllDeterministic)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, 2, resp.Data.Scenarios[0].Runs)
}

func TestReplayErrors(t *testing.T) {
	_, err := executeReplay(t, "text", "testdata/scenarios/jump.yaml", "--runs", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = executeReplay(t, "text", "testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = executeReplay(t, "text")
	require.Error(t, err)
}
