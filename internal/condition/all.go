package condition

import (
	"fmt"
	"log/slog"
	"time"
)

// All fires when every child is true in the same tick (logical AND).
//
// Every child is evaluated on every tick, even after one returns false, so
// that each child's state machine keeps tracking its own input. The order
// check depends on those entry times being current.
type All struct {
	machine
	orderMatters bool
	children     []Condition
}

// NewAll creates an All combinator. When orderMatters is set, the children
// must have entered Met in list order for the combinator to fire.
func NewAll(s Settings, orderMatters bool, children ...Condition) (*All, error) {
	if err := checkChildren(s, children); err != nil {
		return nil, err
	}
	return &All{
		machine:      newMachine(s),
		orderMatters: orderMatters,
		children:     append([]Condition(nil), children...),
	}, nil
}

// OrderMatters reports whether the children must align in list order.
func (a *All) OrderMatters() bool { return a.orderMatters }

// Children returns the child conditions in order.
func (a *All) Children() []Condition {
	return append([]Condition(nil), a.children...)
}

// Evaluate runs every child without consumption and fires when all of them
// fired, the order check passes and the combinator's own gates hold. Only
// then are the children consumed.
func (a *All) Evaluate(fr Frame, consumable, allowedIfConsumed bool) Result {
	results := make([]Result, len(a.children))
	ok := true
	for i, child := range a.children {
		results[i] = child.Evaluate(fr, false, allowedIfConsumed)
		if !results[i].Fired() {
			ok = false
		}
	}
	if !ok {
		a.track(false, fr.Now)
		return notMet
	}

	if a.orderMatters && !a.inOrder() {
		a.track(false, fr.Now)
		return notMet
	}

	a.rebase(a.latestEntry())
	// Consumption is arbitrated by the children above.
	if !a.gates(fr, false, true) {
		return notMet
	}

	if consumable {
		for _, child := range a.children {
			if err := child.Consume(fr.Number); err != nil {
				slog.Debug("all condition could not consume child", "error", err)
			}
		}
	}
	a.markFired(fr.Now)

	args := a.newArgs(a, fr)
	args.Children = make([]*EventArgs, len(results))
	for i, r := range results {
		args.Children[i] = r.Args.Clone()
	}
	return Result{Status: Fired, Args: args}
}

// Consume claims every child's signal for frame. All children are attempted;
// the first error is returned.
func (a *All) Consume(frame int64) error {
	var first error
	for _, child := range a.children {
		if err := child.Consume(frame); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *All) inOrder() bool {
	for i := 1; i < len(a.children); i++ {
		if a.children[i].StateEnteredAt().Before(a.children[i-1].StateEnteredAt()) {
			return false
		}
	}
	return true
}

func (a *All) latestEntry() time.Time {
	var latest time.Time
	for _, child := range a.children {
		if t := child.StateEnteredAt(); t.After(latest) {
			latest = t
		}
	}
	return latest
}

func checkChildren(s Settings, children []Condition) error {
	if len(children) == 0 {
		return &ConfigError{Code: CodeNoChildren, Message: "combinator needs at least one child", Source: s.Source}
	}
	for i, c := range children {
		if c == nil {
			return &ConfigError{
				Code:    CodeNilChild,
				Message: fmt.Sprintf("child %d is nil", i),
				Source:  s.Source,
			}
		}
	}
	return validateSettings(s)
}
