package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vonderborch/Velentr.Input-sub001/internal/tracked"
)

func TestMutationQueue_FIFO(t *testing.T) {
	q := newMutationQueue()

	var order []int
	for i := 1; i <= 3; i++ {
		q.Enqueue(func(*tracked.Registry) error {
			order = append(order, i)
			return nil
		})
	}
	require.Equal(t, 3, q.Len())

	for _, m := range q.Drain() {
		require.NoError(t, m(nil))
	}
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Drain())
}

func TestMutationQueue_IgnoresNil(t *testing.T) {
	q := newMutationQueue()
	q.Enqueue(nil)
	assert.Equal(t, 0, q.Len())
}

func TestMutationQueue_ConcurrentEnqueue(t *testing.T) {
	q := newMutationQueue()
	const goroutines = 50

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Enqueue(func(*tracked.Registry) error { return nil })
		}()
	}
	wg.Wait()

	assert.Len(t, q.Drain(), goroutines)
}
