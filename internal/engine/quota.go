package engine

import (
	"errors"
	"fmt"
)

// FireBudget caps the number of conditions dispatched in one tick.
//
// A binding file with hundreds of overlapping conditions can otherwise flood
// handlers with events from a single key press. The engine asks the budget
// before evaluating each condition, so a condition never commits a fire
// (consumption, cooldown) that would not be dispatched. Once the budget is
// spent the rest of the registry is skipped for that tick and a
// BudgetExceededError names the first skipped condition.
//
// A budget of 0 or less is unlimited.
type FireBudget struct {
	max     int
	current int
}

// NewFireBudget creates a budget of max fires per tick.
func NewFireBudget(max int) *FireBudget {
	return &FireBudget{max: max}
}

// Check reports whether name may be evaluated, i.e. whether a fire from it
// would still fit. It does not record anything.
func (b *FireBudget) Check(frame int64, name string) error {
	if b.max > 0 && b.current >= b.max {
		return &BudgetExceededError{
			Frame:     frame,
			Condition: name,
			Fires:     b.current,
			Limit:     b.max,
		}
	}
	return nil
}

// Record counts one dispatched fire.
func (b *FireBudget) Record() {
	b.current++
}

// Reset zeroes the counter. The engine calls it at the start of every tick.
func (b *FireBudget) Reset() {
	b.current = 0
}

// Current returns the number of fires recorded this tick.
func (b *FireBudget) Current() int {
	return b.current
}

// Max returns the limit.
func (b *FireBudget) Max() int {
	return b.max
}

// BudgetExceededError is returned by Tick when the budget was spent before
// every condition could be evaluated.
type BudgetExceededError struct {
	Frame     int64
	Condition string // first condition skipped
	Fires     int
	Limit     int
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("frame %d spent its fire budget before %q: %d fires, limit %d",
		e.Frame, e.Condition, e.Fires, e.Limit)
}

// IsBudgetExceededError returns true if the error is a BudgetExceededError.
// Uses errors.As to handle wrapped errors.
func IsBudgetExceededError(err error) bool {
	var be *BudgetExceededError
	return errors.As(err, &be)
}
