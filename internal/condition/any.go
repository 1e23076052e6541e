package condition

import (
	"log/slog"
)

// Any fires when at least one child is true (logical OR). Children are
// evaluated in order and evaluation stops at the first that fires.
//
// A child whose device family has no adapter evaluates Unavailable and is
// treated as false, so optional devices never break the combinator.
type Any struct {
	machine
	children []Condition
}

// NewAny creates an Any combinator.
func NewAny(s Settings, children ...Condition) (*Any, error) {
	if err := checkChildren(s, children); err != nil {
		return nil, err
	}
	return &Any{
		machine:  newMachine(s),
		children: append([]Condition(nil), children...),
	}, nil
}

// Children returns the child conditions in order.
func (a *Any) Children() []Condition {
	return append([]Condition(nil), a.children...)
}

// Evaluate fires with the first firing child's arguments, cloned and
// otherwise unmodified.
func (a *Any) Evaluate(fr Frame, consumable, allowedIfConsumed bool) Result {
	winner := -1
	var won Result
	for i, child := range a.children {
		res := child.Evaluate(fr, false, allowedIfConsumed)
		if res.Status == Unavailable {
			slog.Debug("any condition skipping unavailable child",
				"index", i,
				"source", child.Settings().Source,
			)
			continue
		}
		if res.Fired() {
			winner, won = i, res
			break
		}
	}
	if winner < 0 {
		a.track(false, fr.Now)
		return notMet
	}

	a.rebase(a.children[winner].StateEnteredAt())
	if !a.gates(fr, false, true) {
		return notMet
	}

	if consumable {
		a.consumeFrom(winner, fr.Number)
	}
	a.markFired(fr.Now)

	return Result{Status: Fired, Args: won.Args.Clone()}
}

// Consume claims every child's signal for frame. All children are attempted;
// the first error is returned.
func (a *Any) Consume(frame int64) error {
	var first error
	for _, child := range a.children {
		if err := child.Consume(frame); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// consumeFrom consumes the winning child, then attempts the rest. A failure
// on one child does not stop the others.
func (a *Any) consumeFrom(winner int, frame int64) {
	if err := a.children[winner].Consume(frame); err != nil {
		slog.Debug("any condition could not consume winner", "index", winner, "error", err)
	}
	for i, child := range a.children {
		if i == winner {
			continue
		}
		if err := child.Consume(frame); err != nil {
			slog.Debug("any condition could not consume child", "index", i, "error", err)
		}
	}
}
