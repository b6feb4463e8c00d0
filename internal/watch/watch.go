// Package watch broadcasts the latest value of a piece of state.
//
// Subscribers get the current value immediately and then every change. A
// slow subscriber never blocks the writer: its one-slot buffer is replaced
// with the newest value, so it only ever misses intermediate states.
package watch

import (
	"context"
	"sync"
)

// Value holds a value of type T and pushes changes to subscribers.
//
// Thread-safety: All methods are safe for concurrent use.
type Value[T any] struct {
	mu      sync.Mutex
	v       T
	subs    map[int]chan T
	next    int
	stopped bool
	stop    chan struct{}
}

// New creates a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{v: initial, subs: make(map[int]chan T), stop: make(chan struct{})}
}

// Get returns the current value.
func (w *Value[T]) Get() T {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.v
}

// Set stores v and pushes it to every subscriber.
func (w *Value[T]) Set(v T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.v = v
	for _, ch := range w.subs {
		offer(ch, v)
	}
}

// Update applies fn to the current value under the lock and broadcasts the
// result.
func (w *Value[T]) Update(fn func(T) T) T {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.v = fn(w.v)
	for _, ch := range w.subs {
		offer(ch, w.v)
	}
	return w.v
}

// Subscribe returns a channel that receives the current value and then
// every change. The channel is closed when ctx is done or Stop is called.
func (w *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		close(ch)
		return ch
	}
	id := w.next
	w.next++
	w.subs[id] = ch
	ch <- w.v
	w.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-w.stop:
			return
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		if _, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(ch)
		}
	}()

	return ch
}

// Stop closes every subscriber channel. Later Subscribe calls get a closed
// channel. Idempotent.
func (w *Value[T]) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.stop)
	for id, ch := range w.subs {
		delete(w.subs, id)
		close(ch)
	}
}

// Len returns the number of live subscribers.
func (w *Value[T]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

// offer replaces whatever is buffered in ch with v. Only called with the
// Value lock held, so there is a single sender per channel.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
