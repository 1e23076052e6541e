package device

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/vonderborch/Velentr.Input-sub001/internal/value"
)

// Adapter is a polling adapter for one device family.
//
// Input producers stage readings with Set, Press, Release or Pulse. Once per
// tick the engine calls Refresh, which promotes the staged readings to the
// current sample and the old current sample to the previous one. Conditions
// then read both samples and the consumption map; nothing they read changes
// until the next Refresh.
//
// Held readings (Set, Press, Release) persist across refreshes until changed.
// Pulsed readings (gestures, recognised phrases) are part of exactly one
// sample.
//
// Thread-safety: staging methods are safe from any goroutine. Refresh,
// sampling and consumption must be called from the tick goroutine only.
type Adapter struct {
	source    Source
	normalize func(string) Signal

	mu     sync.Mutex
	staged map[Signal]value.Value
	pulsed map[Signal]value.Value

	current  map[Signal]value.Value
	previous map[Signal]value.Value
	consumed *ConsumptionMap
}

// NewAdapter creates an adapter for source with empty samples.
// Voice adapters normalise phrases so "Open  Map" and "open map" name the
// same signal.
func NewAdapter(source Source) *Adapter {
	a := &Adapter{
		source:    source,
		normalize: func(s string) Signal { return Signal(s) },
		staged:    make(map[Signal]value.Value),
		pulsed:    make(map[Signal]value.Value),
		current:   make(map[Signal]value.Value),
		previous:  make(map[Signal]value.Value),
		consumed:  NewConsumptionMap(),
	}
	if source == Voice {
		a.normalize = NormalizePhrase
	}
	return a
}

// NormalizePhrase folds a recognised phrase to a canonical signal: Unicode
// NFC, case folded, with runs of whitespace collapsed to one space.
func NormalizePhrase(phrase string) Signal {
	s := norm.NFC.String(phrase)
	s = cases.Fold().String(s)
	return Signal(strings.Join(strings.Fields(s), " "))
}

// Source returns the device family this adapter samples.
func (a *Adapter) Source() Source {
	return a.source
}

// Key returns the canonical form of sig for this adapter.
func (a *Adapter) Key(sig Signal) Signal {
	return a.normalize(string(sig))
}

// Set stages a held reading for sig.
func (a *Adapter) Set(sig Signal, v value.Value) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.staged[a.Key(sig)] = v
}

// Press stages sig as down.
func (a *Adapter) Press(sig Signal) {
	a.Set(sig, value.Bool(true))
}

// Release stages sig as up.
func (a *Adapter) Release(sig Signal) {
	a.Clear(sig)
}

// Clear removes any held reading for sig; it samples as its zero value.
func (a *Adapter) Clear(sig Signal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.staged, a.Key(sig))
}

// Pulse stages a reading that is present for the next sample only.
func (a *Adapter) Pulse(sig Signal, v value.Value) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pulsed[a.Key(sig)] = v
}

// Refresh advances the samples by one tick.
func (a *Adapter) Refresh() {
	a.mu.Lock()
	next := maps.Clone(a.staged)
	for sig, v := range a.pulsed {
		next[sig] = v
	}
	clear(a.pulsed)
	a.mu.Unlock()

	a.previous = a.current
	a.current = next
}

// SampleCurrent returns this tick's reading for sig.
func (a *Adapter) SampleCurrent(sig Signal) (value.Value, bool) {
	v, ok := a.current[a.Key(sig)]
	return v, ok
}

// SamplePrevious returns last tick's reading for sig.
func (a *Adapter) SamplePrevious(sig Signal) (value.Value, bool) {
	v, ok := a.previous[a.Key(sig)]
	return v, ok
}

// Down reports whether sig is down in this tick's sample.
func (a *Adapter) Down(sig Signal) bool {
	v, ok := a.SampleCurrent(sig)
	return ok && value.Truthy(v)
}

// WasDown reports whether sig was down in last tick's sample.
func (a *Adapter) WasDown(sig Signal) bool {
	v, ok := a.SamplePrevious(sig)
	return ok && value.Truthy(v)
}

// Consume marks sig as consumed for frame.
func (a *Adapter) Consume(sig Signal, frame int64) {
	a.consumed.Consume(a.Key(sig), frame)
}

// IsConsumed reports whether sig was consumed during frame.
func (a *Adapter) IsConsumed(sig Signal, frame int64) bool {
	return a.consumed.IsConsumed(a.Key(sig), frame)
}

// Active returns the signals that are down in the current sample, sorted.
func (a *Adapter) Active() []Signal {
	var out []Signal
	for sig, v := range a.current {
		if value.Truthy(v) {
			out = append(out, sig)
		}
	}
	slices.Sort(out)
	return out
}
