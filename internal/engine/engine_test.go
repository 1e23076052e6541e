package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vonderborch/Velentr.Input-sub001/internal/condition"
	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
	"github.com/vonderborch/Velentr.Input-sub001/internal/testutil"
	"github.com/vonderborch/Velentr.Input-sub001/internal/tracked"
)

type fixture struct {
	engine *Engine
	clock  *testutil.ManualTime
	focus  *testutil.ManualFocus
	kb     *device.Adapter
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	hub := device.NewHub([]device.Source{device.Keyboard})
	kb, ok := hub.Adapter(device.Keyboard)
	require.True(t, ok)

	clock := testutil.NewManualTime(testutil.Epoch)
	focus := testutil.NewManualFocus(true)
	opts = append([]Option{
		WithTimeSource(clock),
		WithFocus(focus),
		WithIDGenerator(NewSequenceGenerator("evt")),
	}, opts...)

	return &fixture{engine: New(hub, opts...), clock: clock, focus: focus, kb: kb}
}

func (f *fixture) edge(t *testing.T, kind condition.EdgeKind, sig device.Signal, s condition.Settings) *condition.Edge {
	t.Helper()
	s.Source = device.Keyboard
	e, err := condition.NewEdge(f.engine.Hub(), condition.EdgeConfig{Settings: s, Kind: kind, Signal: sig})
	require.NoError(t, err)
	return e
}

func (f *fixture) tick(t *testing.T) []Firing {
	t.Helper()
	firings, err := f.engine.Tick()
	require.NoError(t, err)
	f.clock.Advance(16 * time.Millisecond)
	return firings
}

func firedNames(firings []Firing) []string {
	var out []string
	for _, fr := range firings {
		out = append(out, fr.Name)
	}
	return out
}

func TestEngine_New(t *testing.T) {
	e := New(nil)
	assert.NotNil(t, e.Registry())
	assert.Equal(t, 0, e.Registry().Len())
	assert.Equal(t, int64(0), e.Clock().Current())
}

func TestEngine_TickAdvancesFrameAndRefreshes(t *testing.T) {
	f := newFixture(t)
	jump := f.edge(t, condition.PressStarted, "space", condition.Settings{})
	_, err := f.engine.Track("jump", jump)
	require.NoError(t, err)

	f.kb.Press("space")
	firings := f.tick(t)
	require.Len(t, firings, 1)
	assert.Equal(t, int64(1), firings[0].Frame)
	assert.Equal(t, testutil.Epoch, firings[0].Time)
	assert.Equal(t, "jump", firings[0].Name)
	assert.Equal(t, "evt-1", firings[0].Args.ID)

	// Held: press-started does not repeat.
	assert.Empty(t, f.tick(t))
	assert.Equal(t, int64(2), f.engine.Clock().Current())
}

func TestEngine_RegistryOrderIsPriority(t *testing.T) {
	f := newFixture(t)
	consumable := condition.Settings{Consumable: true}
	doubleJump := f.edge(t, condition.PressStarted, "space", consumable)
	jump := f.edge(t, condition.PressStarted, "space", consumable)

	_, err := f.engine.Track("double_jump", doubleJump)
	require.NoError(t, err)
	_, err = f.engine.TrackAt(0, "jump", jump)
	require.NoError(t, err)

	f.kb.Press("space")
	assert.Equal(t, []string{"jump"}, firedNames(f.tick(t)))
}

func TestEngine_DispatchesToSubscribers(t *testing.T) {
	f := newFixture(t)
	fire := f.edge(t, condition.Pressed, "f", condition.Settings{})
	_, err := f.engine.Track("fire", fire)
	require.NoError(t, err)

	var got []*condition.EventArgs
	fire.Subscribe(func(a *condition.EventArgs) { got = append(got, a) })

	f.kb.Press("f")
	firings := f.tick(t)
	require.Len(t, got, 1)
	assert.Equal(t, firings[0].Args.ID, got[0].ID)

	// Mutating the handler's copy does not reach the recorded firing.
	got[0].ID = "changed"
	assert.Equal(t, "evt-1", firings[0].Args.ID)
}

func TestEngine_FocusGate(t *testing.T) {
	f := newFixture(t)
	menu := f.edge(t, condition.Pressed, "m", condition.Settings{WindowMustBeActive: true})
	_, err := f.engine.Track("menu", menu)
	require.NoError(t, err)

	f.kb.Press("m")
	f.focus.Set(false)
	assert.Empty(t, f.tick(t))

	f.focus.Set(true)
	assert.Equal(t, []string{"menu"}, firedNames(f.tick(t)))
}

func TestEngine_DwellAcrossTicks(t *testing.T) {
	f := newFixture(t)
	charge := f.edge(t, condition.Pressed, "c", condition.Settings{MinDwell: 50 * time.Millisecond})
	_, err := f.engine.Track("charge", charge)
	require.NoError(t, err)

	f.kb.Press("c")
	var firstFire int64
	for i := 0; i < 10 && firstFire == 0; i++ {
		if fs := f.tick(t); len(fs) > 0 {
			firstFire = fs[0].Frame
		}
	}
	// Ticks at 0, 16, 32, 48, 64 ms: the fifth is the first at or past 50 ms.
	assert.Equal(t, int64(5), firstFire)
}

func TestEngine_MutationInHandlerIsConcurrentModification(t *testing.T) {
	f := newFixture(t)
	a := f.edge(t, condition.Pressed, "a", condition.Settings{})
	b := f.edge(t, condition.Pressed, "b", condition.Settings{})
	_, err := f.engine.Track("a", a)
	require.NoError(t, err)
	_, err = f.engine.Track("b", b)
	require.NoError(t, err)

	a.Subscribe(func(*condition.EventArgs) {
		_, _ = f.engine.Untrack("b")
	})

	f.kb.Press("a")
	f.kb.Press("b")
	firings, err := f.engine.Tick()
	require.Error(t, err)
	assert.True(t, IsConcurrentModificationError(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeConcurrentModification, re.Code)
	assert.Equal(t, "a", re.Condition)
	assert.ErrorIs(t, err, tracked.ErrConcurrentModification)
	assert.Equal(t, []string{"a"}, firedNames(firings))
}

func TestEngine_DeferAppliesBeforeNextPass(t *testing.T) {
	f := newFixture(t)
	a := f.edge(t, condition.PressStarted, "a", condition.Settings{})
	b := f.edge(t, condition.Pressed, "b", condition.Settings{})
	_, err := f.engine.Track("a", a)
	require.NoError(t, err)
	_, err = f.engine.Track("b", b)
	require.NoError(t, err)

	a.Subscribe(func(*condition.EventArgs) {
		f.engine.Defer(func(r *tracked.Registry) error {
			_, err := r.RemoveByName("b")
			return err
		})
	})

	f.kb.Press("a")
	f.kb.Press("b")
	assert.Equal(t, []string{"a", "b"}, firedNames(f.tick(t)))
	assert.Empty(t, f.tick(t))
	assert.Equal(t, -1, f.engine.Registry().IndexOf("b"))
}

func TestEngine_DeferredFailureDoesNotStopTick(t *testing.T) {
	f := newFixture(t)
	a := f.edge(t, condition.Pressed, "a", condition.Settings{})
	_, err := f.engine.Track("a", a)
	require.NoError(t, err)

	f.engine.Defer(func(r *tracked.Registry) error {
		_, err := r.RemoveByName("missing")
		return err
	})

	f.kb.Press("a")
	assert.Equal(t, []string{"a"}, firedNames(f.tick(t)))
}

func TestEngine_FireBudget(t *testing.T) {
	f := newFixture(t, WithMaxFiresPerTick(2))
	for _, sig := range []device.Signal{"a", "b", "c"} {
		_, err := f.engine.Track(string(sig), f.edge(t, condition.Pressed, sig, condition.Settings{}))
		require.NoError(t, err)
		f.kb.Press(sig)
	}

	firings, err := f.engine.Tick()
	require.Error(t, err)
	assert.True(t, IsBudgetError(err))

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "c", re.Condition)
	assert.Equal(t, []string{"a", "b"}, firedNames(firings))
}

func TestEngine_FireBudgetSkipsWithoutCommitting(t *testing.T) {
	f := newFixture(t, WithMaxFiresPerTick(1))
	a := f.edge(t, condition.PressStarted, "a", condition.Settings{})
	b := f.edge(t, condition.Pressed, "b", condition.Settings{Consumable: true, MinCooldown: time.Second})
	_, err := f.engine.Track("a", a)
	require.NoError(t, err)
	_, err = f.engine.Track("b", b)
	require.NoError(t, err)

	var delivered int
	b.Subscribe(func(*condition.EventArgs) { delivered++ })

	f.kb.Press("a")
	f.kb.Press("b")
	firings, err := f.engine.Tick()
	require.Error(t, err)
	assert.True(t, IsBudgetError(err))
	assert.Equal(t, []string{"a"}, firedNames(firings))

	// b was skipped, not fired and dropped.
	assert.True(t, b.LastFiredAt().IsZero())
	assert.False(t, f.kb.IsConsumed("b", firings[0].Frame))
	assert.Equal(t, 0, delivered)

	// Next tick a is held, so b has the budget and no cooldown to wait out.
	f.clock.Advance(16 * time.Millisecond)
	assert.Equal(t, []string{"b"}, firedNames(f.tick(t)))
	assert.Equal(t, 1, delivered)
}

func TestEngine_Untrack(t *testing.T) {
	f := newFixture(t)
	a := f.edge(t, condition.Pressed, "a", condition.Settings{})
	_, err := f.engine.Track("a", a)
	require.NoError(t, err)

	entry, err := f.engine.Untrack("a")
	require.NoError(t, err)
	assert.Same(t, a, entry.Condition)

	_, err = f.engine.Untrack("a")
	assert.ErrorIs(t, err, tracked.ErrNotFound)
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	hub := device.NewHub([]device.Source{device.Keyboard})
	e := New(hub, WithIDGenerator(NewSequenceGenerator("evt")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- e.Run(ctx, time.Millisecond)
	}()

	require.Eventually(t, func() bool { return e.Clock().Current() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestEngine_RunRejectsBadInterval(t *testing.T) {
	e := New(nil)
	assert.Error(t, e.Run(context.Background(), 0))
}

func TestConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, 16*time.Millisecond, cfg.TickInterval)
	assert.False(t, cfg.StrictDevices)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Options())
}

func TestConfig_FromEnvironment(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{
		"VELENTR_TICK_INTERVAL":      "8ms",
		"VELENTR_STRICT_DEVICES":     "true",
		"VELENTR_LOG_LEVEL":          "debug",
		"VELENTR_MAX_FIRES_PER_TICK": "4",
	})
	require.NoError(t, err)
	assert.Equal(t, 8*time.Millisecond, cfg.TickInterval)
	assert.True(t, cfg.StrictDevices)
	assert.Len(t, cfg.Options(), 1)

	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", lvl.String())
}

func TestConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"bad duration", map[string]string{"VELENTR_TICK_INTERVAL": "soon"}},
		{"zero interval", map[string]string{"VELENTR_TICK_INTERVAL": "0s"}},
		{"bad level", map[string]string{"VELENTR_LOG_LEVEL": "loud"}},
		{"negative budget", map[string]string{"VELENTR_MAX_FIRES_PER_TICK": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFrom(tt.vars)
			assert.Error(t, err)
		})
	}
}
