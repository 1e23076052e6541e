package binding

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Load error codes.
const (
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeUnsupported = "UNSUPPORTED_FORMAT"
	ErrCodeParse       = "PARSE_ERROR"
	ErrCodeSchema      = "SCHEMA_ERROR"
)

// LoadError reports a bindings file that could not be read or decoded.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the decoder error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError returns true if err is or wraps a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// Load reads a bindings file, choosing the decoder by extension:
// .cue, .yaml/.yml or .toml.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: err.Error(), Err: err}
	}

	var f *File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		f, err = LoadCUE(data, path)
	case ".yaml", ".yml":
		f, err = LoadYAML(data)
	case ".toml":
		f, err = LoadTOML(data)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			Path:    path,
			Message: fmt.Sprintf("unsupported bindings format %q (want .cue, .yaml, .yml or .toml)", ext),
		}
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) && le.Path == "" {
			le.Path = path
		}
		return nil, err
	}
	f.Path = path
	return f, nil
}

// LoadCUE compiles CUE source, unifies it with the bindings schema and
// decodes the result. filename is used in error positions.
func LoadCUE(data []byte, filename string) (*File, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile bindings schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(ErrCodeParse, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Bindings")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(ErrCodeSchema, err)
	}

	raw, err := unified.MarshalJSON()
	if err != nil {
		return nil, cueLoadError(ErrCodeSchema, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: err.Error(), Err: err}
	}
	return &f, nil
}

// LoadYAML decodes YAML bindings. Unknown keys are rejected.
func LoadYAML(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("parse yaml: %v", err), Err: err}
	}
	return &f, nil
}

// LoadTOML decodes TOML bindings. Unknown keys are rejected.
func LoadTOML(data []byte) (*File, error) {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var f File
	if err := dec.Decode(&f); err != nil {
		msg := err.Error()
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			msg = fmt.Sprintf("line %d, column %d: %s", row, col, derr.Error())
		}
		return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("parse toml: %s", msg), Err: err}
	}
	return &f, nil
}

// cueLoadError keeps the first CUE error with its position.
func cueLoadError(code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error(), Err: err}
	}

	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error(), Err: err}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
