package device

// ConsumptionMap records, per signal, the frame in which the signal was last
// consumed.
//
// A signal is consumed "this frame" when its stored frame equals the current
// frame number, so stale entries expire on their own when the frame counter
// advances. No per-frame clear step exists. Frame numbers start at 1; the
// zero value of an entry therefore never matches a live frame.
//
// ConsumptionMap is not safe for concurrent use. It is written by firing
// conditions and read by gating logic, both inside the tick goroutine.
type ConsumptionMap struct {
	frames map[Signal]int64
}

// NewConsumptionMap creates an empty map.
func NewConsumptionMap() *ConsumptionMap {
	return &ConsumptionMap{frames: make(map[Signal]int64)}
}

// Consume marks sig as consumed for frame.
func (m *ConsumptionMap) Consume(sig Signal, frame int64) {
	m.frames[sig] = frame
}

// IsConsumed reports whether sig was consumed during frame.
func (m *ConsumptionMap) IsConsumed(sig Signal, frame int64) bool {
	f, ok := m.frames[sig]
	return ok && f == frame
}

// Len returns the number of signals that have ever been consumed.
func (m *ConsumptionMap) Len() int {
	return len(m.frames)
}
