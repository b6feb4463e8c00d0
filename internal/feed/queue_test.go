package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue()

	for i := uint64(1); i <= 3; i++ {
		require.True(t, q.Enqueue(event{kind: eventReconnect, gen: i}))
	}

	for i := uint64(1); i <= 3; i++ {
		e, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, i, e.gen)
	}

	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestEventQueue_SignalCoalesces(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(event{gen: 1})
	q.Enqueue(event{gen: 2})

	assert.Len(t, q.Wait(), 1)
	assert.Equal(t, 2, q.Len())
}

func TestEventQueue_CloseRejectsAndWakes(t *testing.T) {
	q := newEventQueue()

	woke := make(chan struct{})
	go func() {
		for range q.Wait() {
		}
		close(woke)
	}()

	q.Close()
	q.Close()
	assert.True(t, q.Closed())
	assert.False(t, q.Enqueue(event{gen: 1}))

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("Close did not wake waiter")
	}
}

func TestEventQueue_ConcurrentEnqueue(t *testing.T) {
	q := newEventQueue()
	const n = 100

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q.Enqueue(event{gen: uint64(i)})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, q.Len())
}

func TestVersionClock(t *testing.T) {
	var c versionClock
	assert.Equal(t, uint64(0), c.Current())
	assert.Equal(t, uint64(1), c.Next())
	assert.Equal(t, uint64(2), c.Next())
	assert.Equal(t, uint64(2), c.Current())
}
