package condition

import (
	"fmt"
	"log/slog"

	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
	"github.com/vonderborch/Velentr.Input-sub001/internal/value"
)

// ValueConfig configures a ValueCond.
type ValueConfig struct {
	Settings
	Signal device.Signal

	// Kind is the kind of reading the signal produces. When zero it is
	// taken from Threshold.
	Kind value.Kind

	Comparator value.Comparator
	Threshold  value.Value
}

// ValueCond is a condition over a continuous reading: it is valid while
// Comparator(reading, Threshold) holds.
type ValueCond struct {
	machine
	signal     device.Signal
	kind       value.Kind
	comparator value.Comparator
	threshold  value.Value
	adapter    *device.Adapter
}

// NewValue creates a ValueCond. Kind and comparator compatibility is checked
// here so that evaluation cannot meet a type error.
func NewValue(hub *device.Hub, cfg ValueConfig) (*ValueCond, error) {
	if cfg.Threshold == nil {
		return nil, &ConfigError{
			Code:    CodeMissingThreshold,
			Message: "threshold is required",
			Source:  cfg.Source,
			Signal:  cfg.Signal,
		}
	}
	kind := cfg.Kind
	if kind == value.KindInvalid {
		kind = cfg.Threshold.Kind()
	}
	if kind != cfg.Threshold.Kind() {
		return nil, &ConfigError{
			Code:    CodeValueKindMismatch,
			Message: fmt.Sprintf("signal reads %s but threshold is %s", kind, cfg.Threshold.Kind()),
			Source:  cfg.Source,
			Signal:  cfg.Signal,
		}
	}
	if err := value.CheckComparable(cfg.Comparator, kind, cfg.Threshold.Kind()); err != nil {
		return nil, &ConfigError{
			Code:    CodeInvalidComparator,
			Message: fmt.Sprintf("comparator %s cannot compare %s", cfg.Comparator, kind),
			Source:  cfg.Source,
			Signal:  cfg.Signal,
			Err:     err,
		}
	}
	if err := validateSettings(cfg.Settings); err != nil {
		return nil, err
	}
	adapter, err := lookupAdapter(hub, cfg.Settings, cfg.Signal)
	if err != nil {
		return nil, err
	}
	return &ValueCond{
		machine:    newMachine(cfg.Settings),
		signal:     cfg.Signal,
		kind:       kind,
		comparator: cfg.Comparator,
		threshold:  cfg.Threshold,
		adapter:    adapter,
	}, nil
}

// Signal returns the sampled signal.
func (v *ValueCond) Signal() device.Signal { return v.signal }

// Threshold returns the configured threshold.
func (v *ValueCond) Threshold() value.Value { return v.threshold }

// Evaluate compares this tick's reading against the threshold, advances the
// state machine and fires when every gate holds. A signal with no reading
// compares as the zero value of its kind.
func (v *ValueCond) Evaluate(fr Frame, consumable, allowedIfConsumed bool) Result {
	if v.adapter == nil {
		return unavailable
	}

	reading, ok := v.adapter.SampleCurrent(v.signal)
	if !ok {
		reading = value.Zero(v.kind)
	}

	valid, err := value.Compare(v.comparator, reading, v.threshold)
	if err != nil {
		// The producer pushed a reading of the wrong kind for this signal.
		slog.Debug("value condition reading rejected",
			"source", v.settings.Source,
			"signal", v.signal,
			"error", err,
		)
		valid = false
	}

	v.track(valid, fr.Now)
	if !valid {
		return notMet
	}
	if !v.gates(fr, v.adapter.IsConsumed(v.signal, fr.Number), allowedIfConsumed) {
		return notMet
	}

	if consumable {
		v.adapter.Consume(v.signal, fr.Number)
	}
	v.markFired(fr.Now)

	args := v.newArgs(v, fr)
	args.Signal = v.signal
	args.Value = reading
	args.Previous, _ = v.adapter.SamplePrevious(v.signal)
	args.setDetail("comparator", v.comparator.String())
	args.setDetail("threshold", v.threshold.String())
	return Result{Status: Fired, Args: args}
}

// Consume claims the signal for frame.
func (v *ValueCond) Consume(frame int64) error {
	if v.adapter == nil {
		return fmt.Errorf("consume %s/%s: %w", v.settings.Source, v.signal, ErrDeviceUnavailable)
	}
	v.adapter.Consume(v.signal, frame)
	return nil
}
