package cli

import (
	"errors"
	"fmt"

	"github.com/vonderborch/Velentr.Input-sub001/internal/binding"
	"github.com/vonderborch/Velentr.Input-sub001/internal/condition"
	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
)

// Error code constants for failures outside binding validation. Binding
// rule violations keep their own E1xx codes; load failures keep the
// binding package's codes (NOT_FOUND, PARSE_ERROR, ...).
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeWriteFailed = "E007" // File write error
)

// Loaded is a bindings file taken all the way to constructed conditions.
type Loaded struct {
	File  *binding.File
	Hub   *device.Hub
	Named []binding.Named
}

// LoadBindings loads, validates and builds a bindings file.
//
// A load failure is returned as error. Rule violations and construction
// failures are returned as validation errors, so callers can report them
// all at once.
func LoadBindings(path string, strict bool) (*Loaded, []binding.ValidationError, error) {
	f, err := binding.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if verrs := binding.Validate(f); len(verrs) > 0 {
		return &Loaded{File: f}, verrs, nil
	}

	hub, err := binding.NewHub(f, strict)
	if err != nil {
		return &Loaded{File: f}, []binding.ValidationError{{
			Field: "devices", Message: err.Error(), Code: ErrCodeGeneric,
		}}, nil
	}

	named, err := binding.Build(f, hub)
	if err != nil {
		return &Loaded{File: f, Hub: hub}, []binding.ValidationError{buildFailure(err)}, nil
	}
	return &Loaded{File: f, Hub: hub, Named: named}, nil, nil
}

// buildFailure converts a construction error into the validation shape,
// keeping the condition's error code.
func buildFailure(err error) binding.ValidationError {
	ve := binding.ValidationError{Field: "conditions", Message: err.Error(), Code: ErrCodeGeneric}

	var be *binding.BuildError
	if errors.As(err, &be) {
		ve.Field = be.Field
		ve.Message = be.Err.Error()
	}
	var ce *condition.ConfigError
	if errors.As(err, &ce) {
		ve.Code = string(ce.Code)
		ve.Message = ce.Message
	}
	return ve
}

// loadErrorCode returns the code to report for a LoadBindings error.
func loadErrorCode(err error) (code, message string) {
	var le *binding.LoadError
	if errors.As(err, &le) {
		if le.Pos.IsValid() {
			return le.Code, fmt.Sprintf("line %d: %s", le.Pos.Line(), le.Message)
		}
		return le.Code, le.Message
	}
	return ErrCodeGeneric, err.Error()
}
