package condition

import (
	"time"

	"github.com/vonderborch/Velentr.Input-sub001/internal/device"
)

// State is the Idle/Met state of a condition's state machine.
type State int

const (
	// Idle means the condition's validity test is currently false.
	Idle State = iota
	// Met means the validity test is currently true.
	Met
)

func (s State) String() string {
	if s == Met {
		return "met"
	}
	return "idle"
}

// Settings is the immutable timing and arbitration configuration shared by
// every condition variant.
type Settings struct {
	// Source tags the device family. Combinators may use SourceNone.
	Source device.Source

	// Consumable makes a successful fire claim its signal for the frame.
	Consumable bool

	// AllowedIfConsumed lets the condition fire on a signal another
	// condition already claimed this frame.
	AllowedIfConsumed bool

	// WindowMustBeActive suppresses firing while the host window is not
	// focused.
	WindowMustBeActive bool

	// MinDwell is how long the condition must have been Met before it may
	// fire. Zero disables the gate.
	MinDwell time.Duration

	// MinCooldown is the minimum time since the last fire before the
	// condition may fire again. Zero disables the gate.
	MinCooldown time.Duration
}

// Frame is the per-tick context supplied by the tick driver.
type Frame struct {
	// Number is the monotonic frame counter, starting at 1.
	Number int64

	// Now is the tick's timestamp. Every condition evaluated in the tick
	// sees the same value.
	Now time.Time

	// WindowActive reports host window focus for this tick.
	WindowActive bool
}

// Status is the outcome of one evaluation.
type Status int

const (
	// NotMet means the condition did not fire this tick.
	NotMet Status = iota
	// Fired means every gate held and the condition fired.
	Fired
	// Unavailable means the condition's device family has no adapter.
	// It is an ordinary negative result, not an error.
	Unavailable
)

func (s Status) String() string {
	switch s {
	case Fired:
		return "fired"
	case Unavailable:
		return "unavailable"
	default:
		return "not_met"
	}
}

// Result is returned by Evaluate. Args is set only when Status is Fired.
type Result struct {
	Status Status
	Args   *EventArgs
}

// Fired reports whether the evaluation fired.
func (r Result) Fired() bool {
	return r.Status == Fired
}

var (
	notMet      = Result{Status: NotMet}
	unavailable = Result{Status: Unavailable}
)

// Condition is a stateful predicate over sampled device input with
// edge-triggered firing semantics.
//
// The set of implementations is closed: Edge, ValueCond, All and Any.
//
// Evaluate must be called at most once per condition per frame for its
// result to be meaningful. It reads already-sampled adapter state, updates
// the condition's own state machine and, when it fires, optionally consumes
// the underlying signal. It never notifies subscribers; see Notify and Poll.
type Condition interface {
	// Evaluate runs one tick of the state machine.
	Evaluate(fr Frame, consumable, allowedIfConsumed bool) Result

	// Consume claims the condition's signal(s) for frame. It returns
	// ErrDeviceUnavailable when the condition has no adapter.
	Consume(frame int64) error

	Settings() Settings
	State() State

	// StateEnteredAt is when the current Idle/Met state began.
	StateEnteredAt() time.Time

	// LastFiredAt is when the condition last fired; zero if never.
	LastFiredAt() time.Time

	// Subscribe registers h for this condition's fires. The returned
	// function removes the subscription.
	Subscribe(h Handler) (cancel func())

	core() *machine
}

// Notify delivers args to every current subscriber of c, synchronously and
// in subscription order. Each subscriber receives its own clone.
func Notify(c Condition, args *EventArgs) {
	c.core().observers.notify(args)
}

// Poll evaluates c with its own Consumable and AllowedIfConsumed settings
// and notifies subscribers when it fires.
func Poll(c Condition, fr Frame) Result {
	s := c.Settings()
	res := c.Evaluate(fr, s.Consumable, s.AllowedIfConsumed)
	if res.Fired() {
		Notify(c, res.Args)
	}
	return res
}
