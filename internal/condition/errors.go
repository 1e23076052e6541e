package condition

import (
	"errors"
	"fmt"

	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
)

// ErrDeviceUnavailable is returned by Consume on a condition whose device
// family has no adapter.
var ErrDeviceUnavailable = errors.New("device unavailable")

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// CodeNoDeviceConfigured indicates a strict hub has no adapter for the
	// condition's family.
	CodeNoDeviceConfigured ConfigErrorCode = "NO_DEVICE_CONFIGURED"

	// CodeValueKindMismatch indicates a threshold of the wrong value kind.
	CodeValueKindMismatch ConfigErrorCode = "VALUE_KIND_MISMATCH"

	// CodeInvalidComparator indicates a comparator that cannot apply to the
	// value kind.
	CodeInvalidComparator ConfigErrorCode = "INVALID_COMPARATOR"

	// CodeMissingSignal indicates a device condition with no signal.
	CodeMissingSignal ConfigErrorCode = "MISSING_SIGNAL"

	// CodeMissingThreshold indicates a value condition with no threshold.
	CodeMissingThreshold ConfigErrorCode = "MISSING_THRESHOLD"

	// CodeInvalidKind indicates an unknown edge kind.
	CodeInvalidKind ConfigErrorCode = "INVALID_KIND"

	// CodeNoChildren indicates a combinator with no children.
	CodeNoChildren ConfigErrorCode = "NO_CHILDREN"

	// CodeNilChild indicates a nil entry in a combinator's child list.
	CodeNilChild ConfigErrorCode = "NIL_CHILD"

	// CodeNegativeDuration indicates a negative dwell or cooldown.
	CodeNegativeDuration ConfigErrorCode = "NEGATIVE_DURATION"
)

// ConfigError is returned by constructors for invalid configuration. It is
// always reported at construction, never deferred to evaluation.
type ConfigError struct {
	Code    ConfigErrorCode
	Message string
	Source  device.Source
	Signal  device.Signal
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Signal != "" {
		msg = fmt.Sprintf("%s (source=%s, signal=%s)", msg, e.Source, e.Signal)
	} else if e.Source != device.SourceNone {
		msg = fmt.Sprintf("%s (source=%s)", msg, e.Source)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsNoDeviceError returns true if err reports a missing adapter.
// Uses errors.As to handle wrapped errors.
func IsNoDeviceError(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == CodeNoDeviceConfigured
	}
	return false
}

func validateSettings(s Settings) error {
	if s.MinDwell < 0 || s.MinCooldown < 0 {
		return &ConfigError{
			Code:    CodeNegativeDuration,
			Message: fmt.Sprintf("dwell %s and cooldown %s must not be negative", s.MinDwell, s.MinCooldown),
			Source:  s.Source,
		}
	}
	return nil
}

// lookupAdapter resolves the adapter for a device condition. A nil adapter
// with a nil error means the condition is permanently unavailable.
func lookupAdapter(hub *device.Hub, s Settings, sig device.Signal) (*device.Adapter, error) {
	if sig == "" {
		return nil, &ConfigError{Code: CodeMissingSignal, Message: "signal is required", Source: s.Source}
	}
	if hub == nil {
		return nil, &ConfigError{Code: CodeNoDeviceConfigured, Message: "no device hub", Source: s.Source, Signal: sig}
	}
	a, ok := hub.Adapter(s.Source)
	if ok {
		return a, nil
	}
	if hub.Strict() {
		return nil, &ConfigError{
			Code:    CodeNoDeviceConfigured,
			Message: "no adapter configured for device family",
			Source:  s.Source,
			Signal:  sig,
		}
	}
	return nil, nil
}
