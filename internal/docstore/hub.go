package docstore

import "sync"

// Hub fans out change notifications to in-process watchers.
//
// Each watcher channel has a buffer of one and sends never block, so a burst
// of writes coalesces into a single wake-up. Watchers always re-read the full
// state on wake, so a coalesced signal loses nothing.
//
// Thread-safety: All methods are safe for concurrent use.
type Hub struct {
	mu       sync.Mutex
	watchers map[int]chan struct{}
	next     int
}

// NewHub creates a hub with no watchers.
func NewHub() *Hub {
	return &Hub{watchers: make(map[int]chan struct{})}
}

// Watch registers a watcher. The returned cancel func unregisters it and is
// safe to call more than once.
func (h *Hub) Watch() (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan struct{}, 1)
	h.watchers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers, id)
			h.mu.Unlock()
		})
	}
}

// Notify wakes every watcher.
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of registered watchers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}
