package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCompile(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCompileFormatsAgree(t *testing.T) {
	fromYAML, err := executeCompile(t, "text", "testdata/bindings/platformer.yaml")
	require.NoError(t, err)
	fromTOML, err := executeCompile(t, "text", "testdata/bindings/platformer.toml")
	require.NoError(t, err)

	assert.JSONEq(t, fromYAML, fromTOML)
	assert.Contains(t, fromYAML, `"name": "double_jump"`)
}

func TestCompileJSONStats(t *testing.T) {
	out, err := executeCompile(t, "json", "testdata/bindings/platformer.yaml")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	stats := resp.Data.Stats
	assert.Equal(t, 4, stats.Conditions)
	assert.Equal(t, []string{"keyboard", "gamepad"}, stats.Devices)
	assert.Equal(t, 2, stats.Combinators)
	assert.Equal(t, 3, stats.MaxDepth)
	assert.Equal(t, 2, stats.Kinds["press_started"])
	assert.Equal(t, 2, stats.Kinds["pressed"])
	assert.Equal(t, 2, stats.Kinds["value"])
}

func TestCompileToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bindings.json")
	text, err := executeCompile(t, "text", "testdata/bindings/platformer.yaml", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, text, "✓ Compiled 4 condition(s)")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded["conditions"], 4)
}

func TestCompileInvalid(t *testing.T) {
	_, err := executeCompile(t, "text", "testdata/bindings/invalid.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
