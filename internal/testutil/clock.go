package testutil

import (
	"sync"
	"time"
)

// Epoch is the default start time of a ManualTime.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ManualTime is a deterministic time source for tests and scenarios.
//
// Unlike the wall clock, it only moves when told to, so dwell and cooldown
// windows can be hit to the millisecond.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualTime struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
}

// NewManualTime creates a time source reading start. A zero start uses
// Epoch.
func NewManualTime(start time.Time) *ManualTime {
	if start.IsZero() {
		start = Epoch
	}
	return &ManualTime{start: start, now: start}
}

// Now returns the current manual time.
func (m *ManualTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves time forward by d and returns the new time.
// Negative durations are ignored; time never goes backwards.
func (m *ManualTime) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.now = m.now.Add(d)
	}
	return m.now
}

// SetOffset sets the time to start+offset. An offset earlier than the
// current time is ignored.
func (m *ManualTime) SetOffset(offset time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t := m.start.Add(offset); t.After(m.now) {
		m.now = t
	}
	return m.now
}

// Offset returns the time elapsed since start.
func (m *ManualTime) Offset() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now.Sub(m.start)
}

// Reset returns the clock to its start time.
//
// Used for test reuse.
func (m *ManualTime) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.start
}
