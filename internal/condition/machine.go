package condition

import (
	"time"
)

// machine is the Idle/Met state machine and firing-gate policy embedded by
// every condition variant.
//
// INVARIANTS:
//   - enteredAt changes only on an Idle<->Met transition, or when a
//     combinator re-bases it on its children (rebase)
//   - lastFired changes only in markFired
type machine struct {
	settings  Settings
	state     State
	enteredAt time.Time
	lastFired time.Time
	hasFired  bool
	observers observers
}

func newMachine(s Settings) machine {
	return machine{settings: s}
}

func (m *machine) core() *machine { return m }

// Settings returns the condition's configuration.
func (m *machine) Settings() Settings { return m.settings }

// State returns the current Idle/Met state.
func (m *machine) State() State { return m.state }

// StateEnteredAt returns when the current state began.
func (m *machine) StateEnteredAt() time.Time { return m.enteredAt }

// LastFiredAt returns the time of the most recent fire, zero if none.
func (m *machine) LastFiredAt() time.Time { return m.lastFired }

// Subscribe registers h and returns a function that removes it.
func (m *machine) Subscribe(h Handler) (cancel func()) {
	return m.observers.add(h)
}

// track applies the validity test result for this tick.
func (m *machine) track(valid bool, now time.Time) {
	switch {
	case valid && m.state == Idle:
		m.state = Met
		m.enteredAt = now
	case !valid && m.state == Met:
		m.state = Idle
		m.enteredAt = now
	}
}

// rebase marks the machine Met with its entry time taken from a child.
// Combinators call this on every successful evaluation, so their dwell clock
// restarts whenever the latest contributing child's clock restarts.
func (m *machine) rebase(childEnteredAt time.Time) {
	m.state = Met
	m.enteredAt = childEnteredAt
}

// gates reports whether the focus, consumption, dwell and cooldown gates all
// hold for this tick.
func (m *machine) gates(fr Frame, consumed, allowedIfConsumed bool) bool {
	if m.settings.WindowMustBeActive && !fr.WindowActive {
		return false
	}
	if consumed && !allowedIfConsumed {
		return false
	}
	if m.settings.MinDwell > 0 && fr.Now.Sub(m.enteredAt) < m.settings.MinDwell {
		return false
	}
	if m.settings.MinCooldown > 0 && m.hasFired && fr.Now.Sub(m.lastFired) < m.settings.MinCooldown {
		return false
	}
	return true
}

func (m *machine) markFired(now time.Time) {
	m.lastFired = now
	m.hasFired = true
}

// newArgs fills the fields common to every variant's event arguments.
func (m *machine) newArgs(owner Condition, fr Frame) *EventArgs {
	return &EventArgs{
		Source:         m.settings.Source,
		Condition:      owner,
		Frame:          fr.Number,
		StateEnteredAt: m.enteredAt,
		Elapsed:        fr.Now.Sub(m.enteredAt),
		WindowActive:   fr.WindowActive,
		MinDwell:       m.settings.MinDwell,
	}
}
