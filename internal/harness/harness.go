package harness

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/vonderborch/Velentr.Input-sub001/internal/binding"
	"github.com/vonderborch/Velentr.Input-sub001/internal/condition"
	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
	"github.com/vonderborch/Velentr.Input-sub001/internal/engine"
	"github.com/vonderborch/Velentr.Input-sub001/internal/testutil"
	"github.com/vonderborch/Velentr.Input-sub001/internal/value"
)

// Harness runs one scenario against a fresh engine.
// Time, focus and event IDs are deterministic, so equal scenarios
// produce equal traces.
type Harness struct {
	engine *engine.Engine
	hub    *device.Hub
	clock  *testutil.ManualTime
	focus  *testutil.ManualFocus
	tickMS int64
	logger *slog.Logger
}

// Option configures a Harness run.
type Option func(*Harness)

// WithLogger sets the logger handed to the engine. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Load (or take inline) the bindings and build a device hub for them
//  2. Build the conditions and track them on a new engine
//  3. For each step: move the clock, set focus, stage inputs, tick
//  4. Check step expectations, then whole-trace assertions
//
// An error is returned when the scenario cannot run at all (bad bindings,
// input on an unconfigured device family, a runtime error from the engine).
// Expectation and assertion failures are reported in the Result instead.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		clock:  testutil.NewManualTime(testutil.Epoch),
		focus:  testutil.NewManualFocus(true),
		tickMS: scenario.TickMS,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if h.tickMS == 0 {
		h.tickMS = DefaultTickMS
	}
	for _, opt := range opts {
		opt(h)
	}

	file, err := scenarioBindings(scenario)
	if err != nil {
		return nil, err
	}
	h.hub, err = binding.NewHub(file, scenario.Strict)
	if err != nil {
		return nil, fmt.Errorf("bindings: %w", err)
	}
	named, err := binding.Build(file, h.hub)
	if err != nil {
		return nil, fmt.Errorf("bindings: %w", err)
	}

	h.engine = engine.New(h.hub,
		engine.WithTimeSource(h.clock),
		engine.WithFocus(h.focus),
		engine.WithIDGenerator(engine.NewSequenceGenerator("evt")),
		engine.WithMaxFiresPerTick(scenario.MaxFiresPerTick),
		engine.WithLogger(h.logger),
	)
	if err := binding.Install(h.engine, named); err != nil {
		return nil, err
	}

	result := NewResult()
	at := int64(0)
	for i, step := range scenario.Steps {
		switch {
		case step.AtMS != nil:
			if i > 0 && *step.AtMS <= at {
				return nil, fmt.Errorf("step %d: at_ms %d is not after the previous tick (%d)", i, *step.AtMS, at)
			}
			at = *step.AtMS
		case i > 0:
			at += h.tickMS
		}

		if step.Focused != nil {
			h.focus.Set(*step.Focused)
		}
		if err := h.stage(step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}

		if err := h.tick(i, at, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		for r := 0; r < step.Repeat; r++ {
			at += h.tickMS
			if err := h.tick(i, at, result); err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
		}

		for _, failure := range checkStep(i, step, firedAt(result, h.engine.Clock().Current())) {
			result.AddError(failure)
		}
	}

	for _, err := range EvaluateAssertions(result.Trace, scenario.Assertions) {
		result.AddError(err.Error())
	}
	return result, nil
}

func scenarioBindings(s *Scenario) (*binding.File, error) {
	if s.InlineBindings != nil {
		return s.InlineBindings, nil
	}
	f, err := binding.Load(s.Bindings)
	if err != nil {
		return nil, fmt.Errorf("bindings: %w", err)
	}
	return f, nil
}

// stage applies a step's inputs to the adapters. Releases go first so a
// step can release one key and press another.
func (h *Harness) stage(step Step) error {
	for _, key := range step.Release {
		a, sig, err := h.adapter(key)
		if err != nil {
			return err
		}
		a.Release(sig)
	}
	for _, key := range step.Press {
		a, sig, err := h.adapter(key)
		if err != nil {
			return err
		}
		a.Press(sig)
	}
	for _, key := range sortedKeys(step.Set) {
		a, sig, err := h.adapter(key)
		if err != nil {
			return err
		}
		v, err := value.FromAny(step.Set[key])
		if err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		a.Set(sig, v)
	}
	for _, key := range sortedKeys(step.Pulse) {
		a, sig, err := h.adapter(key)
		if err != nil {
			return err
		}
		v, err := value.FromAny(step.Pulse[key])
		if err != nil {
			return fmt.Errorf("pulse %s: %w", key, err)
		}
		a.Pulse(sig, v)
	}
	return nil
}

func (h *Harness) adapter(key string) (*device.Adapter, device.Signal, error) {
	src, sig, err := ParseInputKey(key)
	if err != nil {
		return nil, "", err
	}
	a, ok := h.hub.Adapter(src)
	if !ok {
		return nil, "", fmt.Errorf("input %q: device family %s is not configured", key, src)
	}
	return a, sig, nil
}

func (h *Harness) tick(step int, at int64, result *Result) error {
	h.clock.SetOffset(time.Duration(at) * time.Millisecond)
	firings, err := h.engine.Tick()
	result.Ticks++
	for _, f := range firings {
		result.AddFire(traceEvent(step, at, f))
	}
	if err != nil && !engine.IsBudgetError(err) {
		return err
	}
	if err != nil {
		h.logger.Warn("fire budget exceeded", "step", step, "error", err)
	}
	return nil
}

func traceEvent(step int, at int64, f engine.Firing) TraceEvent {
	ev := TraceEvent{
		Step:      step,
		Frame:     f.Frame,
		AtMS:      at,
		Condition: f.Name,
		ID:        f.Args.ID,
		ElapsedMS: f.Args.Elapsed.Milliseconds(),
	}
	if f.Args.Signal != "" {
		ev.Source = f.Args.Source.String()
		ev.Signal = string(f.Args.Signal)
		ev.Value = value.Encode(f.Args.Value)
	}
	for _, c := range f.Args.Children {
		ev.Children = append(ev.Children, childLabel(c))
	}
	return ev
}

func childLabel(a *condition.EventArgs) string {
	if a.Signal == "" {
		return "combinator"
	}
	return a.Source.String() + "." + string(a.Signal)
}

// firedAt returns the conditions fired in frame, in dispatch order.
func firedAt(result *Result, frame int64) []string {
	var out []string
	for _, ev := range result.Trace {
		if ev.Frame == frame {
			out = append(out, ev.Condition)
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
