package testutil

import "sync/atomic"

// ManualFocus is a window focus source a test can toggle.
//
// The zero value reports an unfocused window; use NewManualFocus(true) for
// the common case.
//
// Thread-safety: ManualFocus is safe for concurrent use.
type ManualFocus struct {
	active atomic.Bool
}

// NewManualFocus creates a focus source with the given initial state.
func NewManualFocus(active bool) *ManualFocus {
	f := &ManualFocus{}
	f.active.Store(active)
	return f
}

// Set changes the focus state seen by the next tick.
func (f *ManualFocus) Set(active bool) {
	f.active.Store(active)
}

// WindowActive reports the current focus state.
func (f *ManualFocus) WindowActive() bool {
	return f.active.Load()
}
