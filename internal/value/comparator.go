package value

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the tolerance used for equality on floating point readings.
const Epsilon = 1e-9

var (
	// ErrKindMismatch is returned when a reading and a threshold hold
	// different variants.
	ErrKindMismatch = errors.New("value kind mismatch")

	// ErrUnordered is returned for an ordering comparison on a kind that
	// has no order (bool).
	ErrUnordered = errors.New("comparator requires an ordered kind")
)

// Comparator is a comparison operator between a reading and a threshold.
type Comparator int

const (
	// ComparatorInvalid is the zero Comparator.
	ComparatorInvalid Comparator = iota
	Equal
	NotEqual
	Greater
	GreaterOrEqual
	Less
	LessOrEqual
)

var comparatorSymbols = map[Comparator]string{
	Equal:          "==",
	NotEqual:       "!=",
	Greater:        ">",
	GreaterOrEqual: ">=",
	Less:           "<",
	LessOrEqual:    "<=",
}

var comparatorNames = map[string]Comparator{
	"equal":            Equal,
	"not_equal":        NotEqual,
	"greater":          Greater,
	"greater_or_equal": GreaterOrEqual,
	"less":             Less,
	"less_or_equal":    LessOrEqual,
}

func (c Comparator) String() string {
	if sym, ok := comparatorSymbols[c]; ok {
		return sym
	}
	return "invalid"
}

// Ordered reports whether the comparator needs an ordering between values.
func (c Comparator) Ordered() bool {
	switch c {
	case Greater, GreaterOrEqual, Less, LessOrEqual:
		return true
	default:
		return false
	}
}

// ParseComparator accepts either the symbol ("<=") or the snake_case name
// ("less_or_equal").
func ParseComparator(s string) (Comparator, error) {
	for c, sym := range comparatorSymbols {
		if sym == s {
			return c, nil
		}
	}
	if c, ok := comparatorNames[s]; ok {
		return c, nil
	}
	return ComparatorInvalid, fmt.Errorf("unknown comparator %q", s)
}

// CheckComparable validates that op can compare a reading of kind actual
// against a threshold of kind threshold. Value conditions call this at
// construction so evaluation never meets a type error.
func CheckComparable(op Comparator, actual, threshold Kind) error {
	if _, ok := comparatorSymbols[op]; !ok {
		return fmt.Errorf("unknown comparator %d", int(op))
	}
	if actual != threshold {
		return fmt.Errorf("%w: reading is %s, threshold is %s", ErrKindMismatch, actual, threshold)
	}
	if op.Ordered() && actual == KindBool {
		return fmt.Errorf("%w: %s on %s", ErrUnordered, op, actual)
	}
	return nil
}

// Compare applies op to actual and threshold.
//
// Point and Vector2 are equal when every component is equal; the ordering
// operators compare their magnitudes, so "stick > 0.5" means the stick is
// pushed further than half way in any direction.
func Compare(op Comparator, actual, threshold Value) (bool, error) {
	if actual == nil || threshold == nil {
		return false, fmt.Errorf("%w: nil operand", ErrKindMismatch)
	}
	if err := CheckComparable(op, actual.Kind(), threshold.Kind()); err != nil {
		return false, err
	}

	if !op.Ordered() {
		eq := equal(actual, threshold)
		if op == NotEqual {
			return !eq, nil
		}
		return eq, nil
	}

	a, b := magnitude(actual), magnitude(threshold)
	switch op {
	case Greater:
		return a > b && !nearlyEqual(a, b), nil
	case GreaterOrEqual:
		return a > b || nearlyEqual(a, b), nil
	case Less:
		return a < b && !nearlyEqual(a, b), nil
	default:
		return a < b || nearlyEqual(a, b), nil
	}
}

func equal(a, b Value) bool {
	switch av := a.(type) {
	case Scalar:
		return nearlyEqual(float64(av), float64(b.(Scalar)))
	case Point:
		return av == b.(Point)
	case Vector2:
		bv := b.(Vector2)
		return nearlyEqual(av.X, bv.X) && nearlyEqual(av.Y, bv.Y)
	case Bool:
		return av == b.(Bool)
	default:
		return false
	}
}

func magnitude(v Value) float64 {
	switch val := v.(type) {
	case Scalar:
		return float64(val)
	case Point:
		return val.Magnitude()
	case Vector2:
		return val.Magnitude()
	default:
		return 0
	}
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}
