package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vonderborch/Velentr.Input-sub001/internal/binding"
	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
)

// DefaultTickMS is the spacing between steps that omit at_ms.
const DefaultTickMS = 16

// Scenario drives a bindings file through a sequence of ticks and checks
// which conditions fire.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Bindings is the path to a bindings file, relative to the scenario
	// file location.
	Bindings string `yaml:"bindings,omitempty"`

	// InlineBindings declares the bindings in the scenario itself.
	// Exactly one of Bindings and InlineBindings must be set.
	InlineBindings *binding.File `yaml:"inline_bindings,omitempty"`

	// Strict forces strict device checking on top of the bindings file.
	Strict bool `yaml:"strict,omitempty"`

	// TickMS is the spacing for steps without at_ms. Default 16.
	TickMS int64 `yaml:"tick_ms,omitempty"`

	// MaxFiresPerTick bounds dispatch per tick. Zero is unlimited.
	MaxFiresPerTick int `yaml:"max_fires_per_tick,omitempty"`

	// Steps are executed one tick each.
	Steps []Step `yaml:"steps"`

	// Assertions validate the whole trace after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one tick. Inputs are staged before the tick; expectations are
// checked after it.
//
// Inputs are keyed "source.signal", e.g. "keyboard.space" or
// "gamepad.left_stick".
type Step struct {
	// AtMS is the tick time in milliseconds from the scenario start.
	// When omitted the step runs TickMS after the previous one.
	AtMS *int64 `yaml:"at_ms,omitempty"`

	// Repeat runs the step this many extra ticks, TickMS apart, with no
	// further input changes. Expectations apply to the last tick.
	Repeat int `yaml:"repeat,omitempty"`

	// Focused sets window focus from this step on.
	Focused *bool `yaml:"focused,omitempty"`

	Press   []string       `yaml:"press,omitempty"`
	Release []string       `yaml:"release,omitempty"`
	Set     map[string]any `yaml:"set,omitempty"`
	Pulse   map[string]any `yaml:"pulse,omitempty"`

	ExpectFired    []string `yaml:"expect_fired,omitempty"`
	ExpectNotFired []string `yaml:"expect_not_fired,omitempty"`

	// ExpectNothing asserts that no condition fired.
	ExpectNothing bool `yaml:"expect_nothing,omitempty"`
}

// Assertion validates the complete trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "fired_count": Condition fired exactly Count times
	// - "fire_order": Conditions first fired in this order
	// - "never_fired": Condition never fired
	Type string `yaml:"type"`

	// Condition is the tracked name (fired_count, never_fired).
	Condition string `yaml:"condition,omitempty"`

	// Count is the expected number of fires (fired_count).
	Count int `yaml:"count,omitempty"`

	// Conditions is the expected first-fire order (fire_order).
	Conditions []string `yaml:"conditions,omitempty"`
}

// Assertion type constants.
const (
	AssertFiredCount = "fired_count"
	AssertFireOrder  = "fire_order"
	AssertNeverFired = "never_fired"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The bindings path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if s.Bindings != "" && !filepath.IsAbs(s.Bindings) {
		s.Bindings = filepath.Join(filepath.Dir(path), s.Bindings)
	}
	if s.Bindings != "" {
		if _, err := os.Stat(s.Bindings); err != nil {
			return nil, fmt.Errorf("invalid scenario: bindings file not found: %s", s.Bindings)
		}
	}
	return s, nil
}

// ParseScenario decodes scenario YAML and validates it. Relative bindings
// paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// FindScenarios returns the .yaml and .yml files directly under dir,
// sorted by name.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if (s.Bindings == "") == (s.InlineBindings == nil) {
		return fmt.Errorf("exactly one of bindings and inline_bindings is required")
	}
	if s.TickMS < 0 {
		return fmt.Errorf("tick_ms must be positive")
	}
	if s.MaxFiresPerTick < 0 {
		return fmt.Errorf("max_fires_per_tick must not be negative")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	last := int64(-1)
	for i, step := range s.Steps {
		if step.AtMS != nil {
			if *step.AtMS < 0 {
				return fmt.Errorf("steps[%d]: at_ms must not be negative", i)
			}
			if *step.AtMS <= last {
				return fmt.Errorf("steps[%d]: at_ms %d must be after the previous step (%d)", i, *step.AtMS, last)
			}
			last = *step.AtMS
		}
		if step.Repeat < 0 {
			return fmt.Errorf("steps[%d]: repeat must not be negative", i)
		}
		if step.ExpectNothing && len(step.ExpectFired) > 0 {
			return fmt.Errorf("steps[%d]: expect_nothing conflicts with expect_fired", i)
		}
		for _, key := range step.Press {
			if _, _, err := ParseInputKey(key); err != nil {
				return fmt.Errorf("steps[%d].press: %w", i, err)
			}
		}
		for _, key := range step.Release {
			if _, _, err := ParseInputKey(key); err != nil {
				return fmt.Errorf("steps[%d].release: %w", i, err)
			}
		}
		for key := range step.Set {
			if _, _, err := ParseInputKey(key); err != nil {
				return fmt.Errorf("steps[%d].set: %w", i, err)
			}
		}
		for key := range step.Pulse {
			if _, _, err := ParseInputKey(key); err != nil {
				return fmt.Errorf("steps[%d].pulse: %w", i, err)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertFiredCount:
		if a.Condition == "" {
			return fmt.Errorf("assertions[%d]: condition is required for fired_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for fired_count", index)
		}
	case AssertFireOrder:
		if len(a.Conditions) < 2 {
			return fmt.Errorf("assertions[%d]: at least two conditions are required for fire_order", index)
		}
	case AssertNeverFired:
		if a.Condition == "" {
			return fmt.Errorf("assertions[%d]: condition is required for never_fired", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// ParseInputKey splits "source.signal" at the first dot.
func ParseInputKey(key string) (device.Source, device.Signal, error) {
	src, sig, ok := strings.Cut(key, ".")
	if !ok || sig == "" {
		return device.SourceNone, "", fmt.Errorf("input %q must be source.signal", key)
	}
	source, err := device.ParseSource(src)
	if err != nil || source == device.SourceNone {
		return device.SourceNone, "", fmt.Errorf("input %q: unknown device family %q", key, src)
	}
	return source, device.Signal(sig), nil
}
