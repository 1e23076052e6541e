package condition

import (
	"fmt"
	"log/slog"

	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
)

// EdgeKind selects which binary transition an Edge condition reports.
type EdgeKind int

const (
	// Pressed fires on every tick the signal is down.
	Pressed EdgeKind = iota + 1
	// PressStarted fires on the tick the signal goes down.
	PressStarted
	// Released fires on every tick the signal is up.
	Released
	// ReleaseStarted fires on the tick the signal comes back up.
	ReleaseStarted
)

var edgeKindNames = map[EdgeKind]string{
	Pressed:        "pressed",
	PressStarted:   "press_started",
	Released:       "released",
	ReleaseStarted: "release_started",
}

func (k EdgeKind) String() string {
	if n, ok := edgeKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("edge(%d)", int(k))
}

// ParseEdgeKind parses the snake_case name used in binding files.
func ParseEdgeKind(s string) (EdgeKind, error) {
	for k, n := range edgeKindNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown edge kind %q", s)
}

// started reports the edge-started kinds, which also require the opposite
// state on the previous sample.
func (k EdgeKind) started() bool {
	return k == PressStarted || k == ReleaseStarted
}

// released reports the kinds whose validity test is "signal is up".
func (k EdgeKind) released() bool {
	return k == Released || k == ReleaseStarted
}

// EdgeConfig configures an Edge condition.
type EdgeConfig struct {
	Settings
	Kind   EdgeKind
	Signal device.Signal
}

// Edge is a condition over one binary signal sampled this tick and last
// tick.
type Edge struct {
	machine
	kind    EdgeKind
	signal  device.Signal
	adapter *device.Adapter
}

// NewEdge creates an Edge condition bound to the hub's adapter for
// cfg.Source.
//
// When the hub has no adapter for the family, a strict hub returns a
// ConfigError with CodeNoDeviceConfigured; a lenient hub returns a condition
// that always evaluates Unavailable.
func NewEdge(hub *device.Hub, cfg EdgeConfig) (*Edge, error) {
	if _, ok := edgeKindNames[cfg.Kind]; !ok {
		return nil, &ConfigError{
			Code:    CodeInvalidKind,
			Message: fmt.Sprintf("unknown edge kind %d", int(cfg.Kind)),
			Source:  cfg.Source,
			Signal:  cfg.Signal,
		}
	}
	if err := validateSettings(cfg.Settings); err != nil {
		return nil, err
	}
	adapter, err := lookupAdapter(hub, cfg.Settings, cfg.Signal)
	if err != nil {
		return nil, err
	}
	if adapter == nil {
		slog.Debug("edge condition has no adapter; it will never fire",
			"source", cfg.Source,
			"signal", cfg.Signal,
		)
	}
	return &Edge{
		machine: newMachine(cfg.Settings),
		kind:    cfg.Kind,
		signal:  cfg.Signal,
		adapter: adapter,
	}, nil
}

// Kind returns the edge kind.
func (e *Edge) Kind() EdgeKind { return e.kind }

// Signal returns the sampled signal.
func (e *Edge) Signal() device.Signal { return e.signal }

// Evaluate samples the signal, advances the state machine and fires when
// every gate holds.
func (e *Edge) Evaluate(fr Frame, consumable, allowedIfConsumed bool) Result {
	if e.adapter == nil {
		return unavailable
	}

	currentValid := e.adapter.Down(e.signal)
	previousValid := e.adapter.WasDown(e.signal)
	if e.kind.released() {
		currentValid, previousValid = !currentValid, !previousValid
	}

	e.track(currentValid, fr.Now)

	if !currentValid {
		return notMet
	}
	if e.kind.started() && previousValid {
		return notMet
	}
	if !e.gates(fr, e.adapter.IsConsumed(e.signal, fr.Number), allowedIfConsumed) {
		return notMet
	}

	if consumable {
		e.adapter.Consume(e.signal, fr.Number)
	}
	e.markFired(fr.Now)

	args := e.newArgs(e, fr)
	args.Signal = e.signal
	args.Value, _ = e.adapter.SampleCurrent(e.signal)
	args.Previous, _ = e.adapter.SamplePrevious(e.signal)
	args.setDetail("edge", e.kind.String())
	return Result{Status: Fired, Args: args}
}

// Consume claims the signal for frame.
func (e *Edge) Consume(frame int64) error {
	if e.adapter == nil {
		return fmt.Errorf("consume %s/%s: %w", e.settings.Source, e.signal, ErrDeviceUnavailable)
	}
	e.adapter.Consume(e.signal, frame)
	return nil
}
