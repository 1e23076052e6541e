package engine

import (
	"sync"

	"github.com/vonderborch/Velentr.Input-sub001/internal/tracked"
)

// Mutation is a registry change deferred to the start of the next tick.
type Mutation func(r *tracked.Registry) error

// mutationQueue is a thread-safe FIFO of deferred registry changes.
//
// Fire handlers run inside the registry pass and must not mutate the
// registry directly; they enqueue here instead. Input threads may enqueue
// as well. The tick goroutine drains the queue before each pass.
type mutationQueue struct {
	mu      sync.Mutex
	pending []Mutation
}

func newMutationQueue() *mutationQueue {
	return &mutationQueue{pending: make([]Mutation, 0, 8)}
}

// Enqueue adds m to the back of the queue. Nil mutations are ignored.
// Thread-safe: may be called from any goroutine.
func (q *mutationQueue) Enqueue(m Mutation) {
	if m == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, m)
}

// Drain removes and returns every queued mutation in FIFO order.
func (q *mutationQueue) Drain() []Mutation {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = make([]Mutation, 0, cap(out))
	return out
}

// Len returns the number of queued mutations.
func (q *mutationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
