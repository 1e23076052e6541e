package binding

import (
	"time"
)

// Condition kinds accepted in binding files.
const (
	KindPressed        = "pressed"
	KindPressStarted   = "press_started"
	KindReleased       = "released"
	KindReleaseStarted = "release_started"
	KindValue          = "value"
	KindAll            = "all"
	KindAny            = "any"
)

// File is the decoded form of a bindings file, independent of the format
// it was written in.
type File struct {
	// Devices lists the device families to create adapters for. Empty
	// means every family the conditions reference.
	Devices []string `json:"devices,omitempty" yaml:"devices,omitempty" toml:"devices,omitempty"`

	// Strict makes a condition on an unlisted family a build error instead
	// of a condition that never fires.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty" toml:"strict,omitempty"`

	Conditions []Spec `json:"conditions" yaml:"conditions" toml:"conditions"`

	// Path is the file the bindings were loaded from. Not serialised.
	Path string `json:"-" yaml:"-" toml:"-"`
}

// Spec declares one condition. Top-level specs are tracked under Name in
// declaration order; children of all/any specs may omit it.
type Spec struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Kind string `json:"kind" yaml:"kind" toml:"kind"`

	Source string `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	Signal string `json:"signal,omitempty" yaml:"signal,omitempty" toml:"signal,omitempty"`

	// Value conditions only.
	Comparator string `json:"comparator,omitempty" yaml:"comparator,omitempty" toml:"comparator,omitempty"`
	Threshold  any    `json:"threshold,omitempty" yaml:"threshold,omitempty" toml:"threshold,omitempty"`
	ValueKind  string `json:"value_kind,omitempty" yaml:"value_kind,omitempty" toml:"value_kind,omitempty"`

	Consumable         bool  `json:"consumable,omitempty" yaml:"consumable,omitempty" toml:"consumable,omitempty"`
	AllowedIfConsumed  bool  `json:"allowed_if_consumed,omitempty" yaml:"allowed_if_consumed,omitempty" toml:"allowed_if_consumed,omitempty"`
	WindowMustBeActive bool  `json:"window_must_be_active,omitempty" yaml:"window_must_be_active,omitempty" toml:"window_must_be_active,omitempty"`
	DwellMS            int64 `json:"dwell_ms,omitempty" yaml:"dwell_ms,omitempty" toml:"dwell_ms,omitempty"`
	CooldownMS         int64 `json:"cooldown_ms,omitempty" yaml:"cooldown_ms,omitempty" toml:"cooldown_ms,omitempty"`

	// Combinators only.
	OrderMatters bool   `json:"order_matters,omitempty" yaml:"order_matters,omitempty" toml:"order_matters,omitempty"`
	Children     []Spec `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// IsCombinator reports whether the spec is an all or any.
func (s Spec) IsCombinator() bool {
	return s.Kind == KindAll || s.Kind == KindAny
}

// Dwell returns DwellMS as a duration.
func (s Spec) Dwell() time.Duration {
	return time.Duration(s.DwellMS) * time.Millisecond
}

// Cooldown returns CooldownMS as a duration.
func (s Spec) Cooldown() time.Duration {
	return time.Duration(s.CooldownMS) * time.Millisecond
}
