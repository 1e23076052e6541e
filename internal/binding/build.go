package binding

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vonderborch/Velentr.Input-sub001/internal/condition"
	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
	"github.com/vonderborch/Velentr.Input-sub001/internal/engine"
	"github.com/vonderborch/Velentr.Input-sub001/internal/value"
)

// Named is a constructed top-level condition.
type Named struct {
	Name      string
	Condition condition.Condition
	Spec      Spec
}

// BuildError wraps a construction failure with the spec's field path.
type BuildError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap returns the construction error, typically a *condition.ConfigError.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// Sources returns the device families a file needs: Devices when listed,
// otherwise every family its conditions reference, in refresh order.
func Sources(f *File) ([]device.Source, error) {
	seen := make(map[device.Source]bool)
	if len(f.Devices) > 0 {
		for _, d := range f.Devices {
			src, err := device.ParseSource(d)
			if err != nil {
				return nil, err
			}
			seen[src] = true
		}
	} else {
		var walk func([]Spec) error
		walk = func(specs []Spec) error {
			for _, s := range specs {
				if s.Source != "" && !s.IsCombinator() {
					src, err := device.ParseSource(s.Source)
					if err != nil {
						return err
					}
					seen[src] = true
				}
				if err := walk(s.Children); err != nil {
					return err
				}
			}
			return nil
		}
		if err := walk(f.Conditions); err != nil {
			return nil, err
		}
	}

	var out []device.Source
	for _, src := range device.AllSources {
		if seen[src] {
			out = append(out, src)
		}
	}
	return out, nil
}

// NewHub creates the device hub a file asks for. strict forces strict mode
// on top of the file's own setting.
func NewHub(f *File, strict bool) (*device.Hub, error) {
	sources, err := Sources(f)
	if err != nil {
		return nil, err
	}
	return device.NewHub(sources, device.WithStrict(strict || f.Strict)), nil
}

// Build validates f and constructs its top-level conditions in declaration
// order. Validation failures are returned joined; construction stops at the
// first failure.
func Build(f *File, hub *device.Hub) ([]Named, error) {
	if verrs := Validate(f); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, ve := range verrs {
			errs[i] = ve
		}
		return nil, errors.Join(errs...)
	}

	out := make([]Named, 0, len(f.Conditions))
	for i, spec := range f.Conditions {
		c, err := buildSpec(fmt.Sprintf("conditions[%d]", i), spec, hub)
		if err != nil {
			return nil, err
		}
		out = append(out, Named{Name: spec.Name, Condition: c, Spec: spec})
	}
	slog.Debug("bindings built", "path", f.Path, "conditions", len(out))
	return out, nil
}

// Install tracks every named condition on e, in order.
func Install(e *engine.Engine, named []Named) error {
	for _, n := range named {
		if _, err := e.Track(n.Name, n.Condition); err != nil {
			return fmt.Errorf("track %s: %w", n.Name, err)
		}
	}
	return nil
}

func buildSpec(field string, s Spec, hub *device.Hub) (condition.Condition, error) {
	settings, err := settingsOf(s)
	if err != nil {
		return nil, &BuildError{Field: field, Err: err}
	}

	var c condition.Condition
	switch s.Kind {
	case KindAll, KindAny:
		children := make([]condition.Condition, len(s.Children))
		for i, child := range s.Children {
			children[i], err = buildSpec(fmt.Sprintf("%s.children[%d]", field, i), child, hub)
			if err != nil {
				return nil, err
			}
		}
		if s.Kind == KindAll {
			c, err = condition.NewAll(settings, s.OrderMatters, children...)
		} else {
			c, err = condition.NewAny(settings, children...)
		}

	case KindValue:
		c, err = buildValue(s, settings, hub)

	default:
		var kind condition.EdgeKind
		kind, err = condition.ParseEdgeKind(s.Kind)
		if err == nil {
			c, err = condition.NewEdge(hub, condition.EdgeConfig{
				Settings: settings,
				Kind:     kind,
				Signal:   device.Signal(s.Signal),
			})
		}
	}
	if err != nil {
		return nil, &BuildError{Field: field, Err: err}
	}
	return c, nil
}

func buildValue(s Spec, settings condition.Settings, hub *device.Hub) (condition.Condition, error) {
	op, err := value.ParseComparator(s.Comparator)
	if err != nil {
		return nil, err
	}
	kind := value.KindInvalid
	if s.ValueKind != "" {
		if kind, err = value.ParseKind(s.ValueKind); err != nil {
			return nil, err
		}
	}
	threshold, err := value.FromAnyKind(s.Threshold, kind)
	if err != nil {
		return nil, err
	}
	return condition.NewValue(hub, condition.ValueConfig{
		Settings:   settings,
		Signal:     device.Signal(s.Signal),
		Kind:       kind,
		Comparator: op,
		Threshold:  threshold,
	})
}

func settingsOf(s Spec) (condition.Settings, error) {
	src := device.SourceNone
	if s.Source != "" {
		var err error
		if src, err = device.ParseSource(s.Source); err != nil {
			return condition.Settings{}, err
		}
	}
	return condition.Settings{
		Source:             src,
		Consumable:         s.Consumable,
		AllowedIfConsumed:  s.AllowedIfConsumed,
		WindowMustBeActive: s.WindowMustBeActive,
		MinDwell:           s.Dwell(),
		MinCooldown:        s.Cooldown(),
	}, nil
}
