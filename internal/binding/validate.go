package binding

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
	"github.com/vonderborch/Velentr.Input-sub001/internal/value"
)

// Validation error codes (E100-E199)
const (
	// File errors (E100-E104)
	ErrNoConditions    = "E100" // file declares no conditions
	ErrUnknownDevice   = "E101" // devices entry is not a known family
	ErrDuplicateDevice = "E102" // devices entry listed twice

	// Condition errors (E110-E129)
	ErrMissingName      = "E110" // top-level condition without a name
	ErrDuplicateName    = "E111" // name used twice
	ErrUnknownKind      = "E112" // kind is not recognised
	ErrMissingSource    = "E113" // device condition without a source
	ErrUnknownSource    = "E114" // source is not a known family
	ErrMissingSignal    = "E115" // device condition without a signal
	ErrBadComparator    = "E116" // comparator missing or unknown
	ErrBadThreshold     = "E117" // threshold missing or not a value
	ErrKindMismatch     = "E118" // threshold does not match value_kind or comparator
	ErrNegativeDuration = "E119" // dwell_ms or cooldown_ms below zero
	ErrNoChildren       = "E120" // combinator without children
	ErrUnexpectedField  = "E121" // field does not apply to this kind
	ErrUndeclaredDevice = "E122" // strict file references an unlisted family
	ErrDurationTooLarge = "E123" // dwell_ms or cooldown_ms overflows a time.Duration
)

// ValidationError represents a binding validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a decoded file against the binding rules.
// Returns all errors found (does not fail-fast).
func Validate(f *File) []ValidationError {
	v := &validator{names: make(map[string]string)}
	if f == nil || len(f.Conditions) == 0 {
		v.add("conditions", ErrNoConditions, "at least one condition is required")
		return v.errs
	}

	v.declared = make(map[device.Source]bool)
	for i, d := range f.Devices {
		field := fmt.Sprintf("devices[%d]", i)
		src, err := device.ParseSource(d)
		if err != nil || src == device.SourceNone {
			v.add(field, ErrUnknownDevice, fmt.Sprintf("unknown device family %q", d))
			continue
		}
		if v.declared[src] {
			v.add(field, ErrDuplicateDevice, fmt.Sprintf("device family %q listed twice", d))
		}
		v.declared[src] = true
	}
	v.strict = f.Strict && len(f.Devices) > 0

	for i, spec := range f.Conditions {
		field := fmt.Sprintf("conditions[%d]", i)
		if strings.TrimSpace(spec.Name) == "" {
			v.add(field+".name", ErrMissingName, "top-level conditions must be named")
		}
		v.spec(field, spec)
	}
	return v.errs
}

type validator struct {
	errs     []ValidationError
	names    map[string]string // name -> field path of first use
	declared map[device.Source]bool
	strict   bool
}

func (v *validator) add(field, code, msg string) {
	v.errs = append(v.errs, ValidationError{Field: field, Code: code, Message: msg})
}

// maxDurationMS is the largest millisecond count a time.Duration can hold.
const maxDurationMS = math.MaxInt64 / int64(time.Millisecond)

func (v *validator) duration(field string, ms int64) {
	key := field[strings.LastIndex(field, ".")+1:]
	switch {
	case ms < 0:
		v.add(field, ErrNegativeDuration, key+" must not be negative")
	case ms > maxDurationMS:
		v.add(field, ErrDurationTooLarge, fmt.Sprintf("%s must be at most %d", key, maxDurationMS))
	}
}

func (v *validator) spec(field string, s Spec) {
	if s.Name != "" {
		if first, ok := v.names[s.Name]; ok {
			v.add(field+".name", ErrDuplicateName, fmt.Sprintf("name %q already used at %s", s.Name, first))
		} else {
			v.names[s.Name] = field
		}
	}
	v.duration(field+".dwell_ms", s.DwellMS)
	v.duration(field+".cooldown_ms", s.CooldownMS)

	switch s.Kind {
	case KindPressed, KindPressStarted, KindReleased, KindReleaseStarted:
		v.device(field, s)
		v.noValueFields(field, s)
		v.noChildren(field, s)
	case KindValue:
		v.device(field, s)
		v.valueFields(field, s)
		v.noChildren(field, s)
	case KindAll, KindAny:
		if s.Signal != "" {
			v.add(field+".signal", ErrUnexpectedField, fmt.Sprintf("%s conditions take no signal", s.Kind))
		}
		v.noValueFields(field, s)
		if s.Kind == KindAny && s.OrderMatters {
			v.add(field+".order_matters", ErrUnexpectedField, "order_matters applies to all conditions only")
		}
		if s.Source != "" {
			if _, err := device.ParseSource(s.Source); err != nil {
				v.add(field+".source", ErrUnknownSource, err.Error())
			}
		}
		if len(s.Children) == 0 {
			v.add(field+".children", ErrNoChildren, fmt.Sprintf("%s needs at least one child", s.Kind))
		}
		for i, child := range s.Children {
			v.spec(fmt.Sprintf("%s.children[%d]", field, i), child)
		}
	case "":
		v.add(field+".kind", ErrUnknownKind, "kind is required")
	default:
		v.add(field+".kind", ErrUnknownKind, fmt.Sprintf("unknown kind %q", s.Kind))
	}
}

func (v *validator) device(field string, s Spec) {
	if s.Source == "" {
		v.add(field+".source", ErrMissingSource, "source is required")
	} else if src, err := device.ParseSource(s.Source); err != nil || src == device.SourceNone {
		v.add(field+".source", ErrUnknownSource, fmt.Sprintf("unknown device family %q", s.Source))
	} else if v.strict && !v.declared[src] {
		v.add(field+".source", ErrUndeclaredDevice, fmt.Sprintf("device family %q is not listed in devices", s.Source))
	}
	if strings.TrimSpace(s.Signal) == "" {
		v.add(field+".signal", ErrMissingSignal, "signal is required")
	}
}

func (v *validator) valueFields(field string, s Spec) {
	op, err := value.ParseComparator(s.Comparator)
	if err != nil {
		v.add(field+".comparator", ErrBadComparator, fmt.Sprintf("comparator is required, got %q", s.Comparator))
		return
	}
	if s.Threshold == nil {
		v.add(field+".threshold", ErrBadThreshold, "threshold is required")
		return
	}
	want := value.KindInvalid
	if s.ValueKind != "" {
		if want, err = value.ParseKind(s.ValueKind); err != nil {
			v.add(field+".value_kind", ErrKindMismatch, err.Error())
			return
		}
	}
	threshold, err := value.FromAnyKind(s.Threshold, want)
	if err != nil {
		v.add(field+".threshold", ErrBadThreshold, err.Error())
		return
	}
	if err := value.CheckComparable(op, threshold.Kind(), threshold.Kind()); err != nil {
		v.add(field+".comparator", ErrKindMismatch, err.Error())
	}
}

func (v *validator) noValueFields(field string, s Spec) {
	if s.Comparator != "" || s.Threshold != nil || s.ValueKind != "" {
		v.add(field, ErrUnexpectedField, fmt.Sprintf("comparator, threshold and value_kind apply to value conditions only, not %s", s.Kind))
	}
}

func (v *validator) noChildren(field string, s Spec) {
	if len(s.Children) > 0 {
		v.add(field+".children", ErrUnexpectedField, fmt.Sprintf("%s conditions take no children", s.Kind))
	}
	if s.OrderMatters {
		v.add(field+".order_matters", ErrUnexpectedField, "order_matters applies to all conditions only")
	}
}
