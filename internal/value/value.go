package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	// KindInvalid is the zero Kind; no Value reports it.
	KindInvalid Kind = iota
	// KindScalar is a single analog reading (trigger, axis, pressure).
	KindScalar
	// KindPoint is an integer position (cursor, touch location).
	KindPoint
	// KindVector2 is a continuous 2D reading (thumbstick, scroll delta).
	KindVector2
	// KindBool is a binary reading (button, key, recognised phrase).
	KindBool
)

var kindNames = map[Kind]string{
	KindScalar:  "scalar",
	KindPoint:   "point",
	KindVector2: "vector2",
	KindBool:    "bool",
}

// String returns the lower-case name used in binding files.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// ParseKind parses a kind name as written in binding files.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown value kind %q", s)
}

// Value is a sealed interface over the sampled reading types.
// Only Scalar, Point, Vector2 and Bool implement it.
type Value interface {
	Kind() Kind
	String() string
	sealed()
}

// Scalar is a single analog reading.
type Scalar float64

// Point is an integer 2D position.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vector2 is a continuous 2D reading.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bool is a binary reading.
type Bool bool

func (Scalar) Kind() Kind  { return KindScalar }
func (Point) Kind() Kind   { return KindPoint }
func (Vector2) Kind() Kind { return KindVector2 }
func (Bool) Kind() Kind    { return KindBool }

func (Scalar) sealed()  {}
func (Point) sealed()   {}
func (Vector2) sealed() {}
func (Bool) sealed()    {}

func (s Scalar) String() string {
	return strconv.FormatFloat(float64(s), 'g', -1, 64)
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func (v Vector2) String() string {
	return fmt.Sprintf("(%s,%s)",
		strconv.FormatFloat(v.X, 'g', -1, 64),
		strconv.FormatFloat(v.Y, 'g', -1, 64))
}

func (b Bool) String() string {
	return strconv.FormatBool(bool(b))
}

// Magnitude returns the Euclidean length of a point.
func (p Point) Magnitude() float64 {
	return math.Hypot(float64(p.X), float64(p.Y))
}

// Magnitude returns the Euclidean length of a vector.
func (v Vector2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// Zero returns the resting value for a kind: 0, the origin, or false.
// Adapters report Zero for signals that have never been sampled.
func Zero(k Kind) Value {
	switch k {
	case KindScalar:
		return Scalar(0)
	case KindPoint:
		return Point{}
	case KindVector2:
		return Vector2{}
	case KindBool:
		return Bool(false)
	default:
		return nil
	}
}

// Truthy reports whether a reading counts as "down" for edge sampling.
// Analog readings are down when they leave their resting value.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case Bool:
		return bool(val)
	case Scalar:
		return val != 0
	case Point:
		return val.X != 0 || val.Y != 0
	case Vector2:
		return val.X != 0 || val.Y != 0
	default:
		return false
	}
}

// Encode converts a Value into plain Go data for JSON and YAML output.
func Encode(v Value) any {
	switch val := v.(type) {
	case Scalar:
		return float64(val)
	case Point:
		return map[string]any{"x": val.X, "y": val.Y}
	case Vector2:
		return map[string]any{"x": val.X, "y": val.Y}
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// FromAny converts decoded YAML, TOML or JSON data into a Value.
//
// Numbers become Scalar. Objects with x and y become Point when both
// coordinates are integral and Vector2 otherwise. Booleans become Bool.
func FromAny(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return nil, fmt.Errorf("null is not a value")
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case map[string]any:
		return pointFromMap(val)
	default:
		f, _, err := number(raw)
		if err != nil {
			return nil, err
		}
		return Scalar(f), nil
	}
}

// FromAnyKind converts raw data like FromAny, then checks it against the
// requested kind. An integral Point is widened to Vector2 when asked for,
// since decoders cannot tell {x: 1.0} from {x: 1}.
func FromAnyKind(raw any, want Kind) (Value, error) {
	v, err := FromAny(raw)
	if err != nil {
		return nil, err
	}
	if want == KindInvalid || v.Kind() == want {
		return v, nil
	}
	if p, ok := v.(Point); ok && want == KindVector2 {
		return Vector2{X: float64(p.X), Y: float64(p.Y)}, nil
	}
	return nil, fmt.Errorf("%w: got %s, want %s", ErrKindMismatch, v.Kind(), want)
}

func pointFromMap(m map[string]any) (Value, error) {
	rawX, okX := m["x"]
	rawY, okY := m["y"]
	if !okX || !okY || len(m) != 2 {
		return nil, fmt.Errorf("2D value requires exactly the keys x and y")
	}
	x, xInt, err := number(rawX)
	if err != nil {
		return nil, fmt.Errorf("x: %w", err)
	}
	y, yInt, err := number(rawY)
	if err != nil {
		return nil, fmt.Errorf("y: %w", err)
	}
	if xInt && yInt && fitsInt(x) && fitsInt(y) {
		return Point{X: int(x), Y: int(y)}, nil
	}
	return Vector2{X: x, Y: y}, nil
}

// fitsInt reports whether f converts to int without overflow. float64(MaxInt)
// rounds up to 2^63, hence the strict upper bound.
func fitsInt(f float64) bool {
	return f >= math.MinInt && f < math.MaxInt
}

// number normalises the numeric types produced by the various decoders.
func number(raw any) (f float64, isInt bool, err error) {
	switch n := raw.(type) {
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	case uint64:
		return float64(n), true, nil
	case float64:
		return n, !math.IsInf(n, 0) && n == math.Trunc(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return float64(i), true, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false, fmt.Errorf("invalid number %q", n.String())
		}
		return f, false, nil
	default:
		return 0, false, fmt.Errorf("unsupported value type %T", raw)
	}
}
