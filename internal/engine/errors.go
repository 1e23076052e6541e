package engine

import (
	"errors"
	"fmt"

	"github.com/vonderborch/Velentr.Input-sub001/internal/tracked"
)

// RuntimeError represents an error detected while driving a tick.
//
// Runtime errors include:
//   - Concurrent modification: the registry changed during the pass
//   - Budget exceeded: the per-tick budget was spent before the pass ended
//
// Device unavailability is not a runtime error; such conditions simply
// never fire.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Frame is the tick in which the error occurred.
	Frame int64

	// Condition names the tracked condition being processed, if any.
	Condition string

	// Err is the underlying cause.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeConcurrentModification indicates the registry was mutated
	// during the pass, typically from a fire handler.
	ErrCodeConcurrentModification RuntimeErrorCode = "CONCURRENT_MODIFICATION"

	// ErrCodeBudgetExceeded indicates the per-tick fire budget was spent and
	// the rest of the registry was skipped.
	ErrCodeBudgetExceeded RuntimeErrorCode = "BUDGET_EXCEEDED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Condition != "" {
		return fmt.Sprintf("%s: %s (frame=%d, condition=%s)", e.Code, e.Message, e.Frame, e.Condition)
	}
	return fmt.Sprintf("%s: %s (frame=%d)", e.Code, e.Message, e.Frame)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsConcurrentModificationError returns true if err reports a registry
// mutated during a pass. Uses errors.As to handle wrapped errors.
func IsConcurrentModificationError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) && re.Code == ErrCodeConcurrentModification {
		return true
	}
	return tracked.IsConcurrentModification(err)
}

// IsBudgetError returns true if the error is a budget exceeded error.
// Matches both RuntimeError with ErrCodeBudgetExceeded and
// BudgetExceededError.
func IsBudgetError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) && re.Code == ErrCodeBudgetExceeded {
		return true
	}
	return IsBudgetExceededError(err)
}

func newConcurrentModificationError(frame int64, cause error) *RuntimeError {
	var cm *tracked.ConcurrentModificationError
	name := ""
	if errors.As(cause, &cm) {
		name = cm.At
	}
	return &RuntimeError{
		Code:      ErrCodeConcurrentModification,
		Message:   "registry modified during tick; use Defer from fire handlers",
		Frame:     frame,
		Condition: name,
		Err:       cause,
	}
}

func newBudgetError(frame int64, cause *BudgetExceededError) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeBudgetExceeded,
		Message:   fmt.Sprintf("fire budget of %d spent; remaining conditions skipped", cause.Limit),
		Frame:     frame,
		Condition: cause.Condition,
		Err:       cause,
	}
}
