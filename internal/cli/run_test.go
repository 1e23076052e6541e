package cli

import (
	"bytes"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
	"github.com/vonderborch/Velentr.Input-sub001/internal/value"
)

func TestRunCommandDrivesEngine(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("# jump once\npress keyboard.space\nwait 50ms\nquit\n"))
	cmd.SetArgs([]string{"testdata/bindings/platformer.yaml", "--interval", "2ms"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "fired jump")
	assert.Contains(t, buf.String(), "keyboard.space=true")
	assert.Equal(t, 1, strings.Count(buf.String(), "fired jump"))
}

func TestRunCommandInvalidBindings(t *testing.T) {
	cmd := NewRunCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"testdata/bindings/invalid.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestApplyCommand(t *testing.T) {
	hub := device.NewHub([]device.Source{device.Keyboard, device.Gamepad})
	kb, _ := hub.Adapter(device.Keyboard)
	pad, _ := hub.Adapter(device.Gamepad)
	var focused atomic.Bool
	focused.Store(true)

	_, _, err := applyCommand("press keyboard.space", hub, &focused)
	require.NoError(t, err)
	_, _, err = applyCommand("set gamepad.left_stick {x: 0.9, y: 0}", hub, &focused)
	require.NoError(t, err)
	_, _, err = applyCommand("pulse gamepad.right_trigger 0.5", hub, &focused)
	require.NoError(t, err)
	hub.Refresh()

	assert.True(t, kb.Down("space"))
	v, ok := pad.SampleCurrent("left_stick")
	require.True(t, ok)
	assert.Equal(t, value.Vector2{X: 0.9, Y: 0}, v)
	v, ok = pad.SampleCurrent("right_trigger")
	require.True(t, ok)
	assert.Equal(t, value.Scalar(0.5), v)

	_, _, err = applyCommand("focus off", hub, &focused)
	require.NoError(t, err)
	assert.False(t, focused.Load())

	wait, quit, err := applyCommand("wait 20ms", hub, &focused)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, wait)
	assert.False(t, quit)

	_, quit, err = applyCommand("quit", hub, &focused)
	require.NoError(t, err)
	assert.True(t, quit)

	for _, bad := range []string{
		"jump",
		"wait soon",
		"focus maybe",
		"press space",
		"press mouse.left",
		"set gamepad.left_trigger",
		"set gamepad.left_trigger [1, 2]",
	} {
		_, _, err := applyCommand(bad, hub, &focused)
		assert.Error(t, err, bad)
	}
}
