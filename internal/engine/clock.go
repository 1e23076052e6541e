package engine

import (
	"sync/atomic"
	"time"
)

// Clock is the monotonic frame counter.
//
// Every tick takes exactly one frame number from Next. Frame numbers start
// at 1, so the zero value of a consumption record never matches a real
// frame.
//
// Thread-safety: Clock is safe for concurrent use. Only the tick goroutine
// advances it in practice; Current may be read from anywhere.
type Clock struct {
	frame atomic.Int64
}

// NewClock creates a clock whose first frame is 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that has already issued frame start; the next
// frame is start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.frame.Store(start)
	return c
}

// Next advances to and returns the next frame number.
func (c *Clock) Next() int64 {
	return c.frame.Add(1)
}

// Current returns the last issued frame number, 0 before the first tick.
func (c *Clock) Current() int64 {
	return c.frame.Load()
}

// TimeSource supplies the timestamp of each tick.
type TimeSource interface {
	Now() time.Time
}

// SystemTime reads the wall clock.
type SystemTime struct{}

// Now returns time.Now().
func (SystemTime) Now() time.Time { return time.Now() }

// FocusSource reports whether the host window is focused.
type FocusSource interface {
	WindowActive() bool
}

// AlwaysFocused is a FocusSource for hosts without a window.
type AlwaysFocused struct{}

// WindowActive returns true.
func (AlwaysFocused) WindowActive() bool { return true }

// FocusFunc adapts a function to FocusSource.
type FocusFunc func() bool

// WindowActive calls f.
func (f FocusFunc) WindowActive() bool { return f() }
