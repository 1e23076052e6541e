// Package tracked provides the ordered, versioned registry of named
// conditions that the engine evaluates once per tick.
//
// Position is priority: the condition at position 0 is evaluated first and
// therefore wins consumption races. Positions are always dense, 0..Len()-1.
package tracked

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vonderborch/Velentr.Input-sub001/internal/condition"
)

var (
	// ErrAlreadyExists indicates a name that is already tracked.
	ErrAlreadyExists = errors.New("condition already tracked")
	// ErrNotFound indicates a name that is not tracked.
	ErrNotFound = errors.New("condition not tracked")
	// ErrOutOfRange indicates a position outside the registry.
	ErrOutOfRange = errors.New("position out of range")
	// ErrNameRequired indicates an empty name.
	ErrNameRequired = errors.New("condition name is required")
	// ErrConditionRequired indicates a nil condition.
	ErrConditionRequired = errors.New("condition is required")
	// ErrConcurrentModification matches every ConcurrentModificationError.
	ErrConcurrentModification = errors.New("registry modified during iteration")
)

// ConcurrentModificationError is returned by Each when the registry changed
// while the iteration was in progress.
type ConcurrentModificationError struct {
	// At is the name of the entry whose callback was running when the
	// change was detected.
	At       string
	Expected uint64
	Actual   uint64
}

// Error implements the error interface.
func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s: version %d became %d while visiting %q",
		ErrConcurrentModification, e.Expected, e.Actual, e.At)
}

// Is makes errors.Is(err, ErrConcurrentModification) hold.
func (e *ConcurrentModificationError) Is(target error) bool {
	return target == ErrConcurrentModification
}

// IsConcurrentModification returns true if err is or wraps a
// ConcurrentModificationError.
func IsConcurrentModification(err error) bool {
	var cm *ConcurrentModificationError
	return errors.As(err, &cm)
}

// Entry is one tracked condition and its current position.
type Entry struct {
	Name      string
	Condition condition.Condition
	Position  int
}

type slot struct {
	name string
	cond condition.Condition
}

// Registry is an order-preserving map from name to condition.
//
// INVARIANTS:
//   - names are unique
//   - index[name] == position of name in order
//   - version increments on every successful insert, remove or move
//
// Registry is not safe for concurrent use. The engine serialises access.
type Registry struct {
	order   []slot
	index   map[string]int
	version uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Insert appends c under name and returns its position.
func (r *Registry) Insert(name string, c condition.Condition) (int, error) {
	return r.InsertAt(len(r.order), name, c)
}

// InsertAt inserts c under name at pos, shifting later entries down.
// pos may equal Len() to append.
func (r *Registry) InsertAt(pos int, name string, c condition.Condition) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrNameRequired
	}
	if c == nil {
		return 0, fmt.Errorf("%w: %s", ErrConditionRequired, name)
	}
	if _, ok := r.index[name]; ok {
		return 0, fmt.Errorf("%w: %s", ErrAlreadyExists, name)
	}
	if pos < 0 || pos > len(r.order) {
		return 0, fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, pos, len(r.order))
	}

	r.order = append(r.order, slot{})
	copy(r.order[pos+1:], r.order[pos:])
	r.order[pos] = slot{name: name, cond: c}
	r.reindex(pos)
	r.version++
	return pos, nil
}

// RemoveByName removes the named entry and returns it with the position it
// held.
func (r *Registry) RemoveByName(name string) (Entry, error) {
	pos, ok := r.index[strings.TrimSpace(name)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return r.RemoveAt(pos)
}

// RemoveAt removes the entry at pos and returns it.
func (r *Registry) RemoveAt(pos int) (Entry, error) {
	if pos < 0 || pos >= len(r.order) {
		return Entry{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, pos, len(r.order))
	}
	s := r.order[pos]
	r.order = append(r.order[:pos], r.order[pos+1:]...)
	delete(r.index, s.name)
	r.reindex(pos)
	r.version++
	return Entry{Name: s.name, Condition: s.cond, Position: pos}, nil
}

// Move relocates the named entry to pos, keeping the relative order of the
// others.
func (r *Registry) Move(name string, pos int) error {
	from, ok := r.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if pos < 0 || pos >= len(r.order) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, pos, len(r.order))
	}
	if from == pos {
		return nil
	}
	s := r.order[from]
	if from < pos {
		copy(r.order[from:pos], r.order[from+1:pos+1])
	} else {
		copy(r.order[pos+1:from+1], r.order[pos:from])
	}
	r.order[pos] = s
	r.reindex(min(from, pos))
	r.version++
	return nil
}

// Get returns the named condition.
func (r *Registry) Get(name string) (condition.Condition, bool) {
	pos, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.order[pos].cond, true
}

// IndexOf returns the position of name, or -1.
func (r *Registry) IndexOf(name string) int {
	if pos, ok := r.index[name]; ok {
		return pos
	}
	return -1
}

// Len returns the number of tracked conditions.
func (r *Registry) Len() int {
	return len(r.order)
}

// Version returns the modification counter.
func (r *Registry) Version() uint64 {
	return r.version
}

// Entries returns a snapshot of the registry in order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.order))
	for i, s := range r.order {
		out[i] = Entry{Name: s.name, Condition: s.cond, Position: i}
	}
	return out
}

// Each calls fn for every entry in position order. If the registry is
// modified while fn runs, Each stops and returns a
// *ConcurrentModificationError. An error returned by fn stops the
// iteration and is returned as is.
func (r *Registry) Each(fn func(Entry) error) error {
	expected := r.version
	for i := 0; i < len(r.order); i++ {
		s := r.order[i]
		if err := fn(Entry{Name: s.name, Condition: s.cond, Position: i}); err != nil {
			return err
		}
		if r.version != expected {
			return &ConcurrentModificationError{At: s.name, Expected: expected, Actual: r.version}
		}
	}
	return nil
}

func (r *Registry) reindex(from int) {
	for i := from; i < len(r.order); i++ {
		r.index[r.order[i].name] = i
	}
}
