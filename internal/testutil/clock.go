package testutil

import (
	"sync"
	"time"
)

// ManualClock is a deterministic wall clock for tests.
//
// Each call to Now returns the current instant and then advances it by Step,
// so successive timestamps are strictly increasing and identical across runs.
// A zero Step freezes the clock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// Epoch is the instant ManualClock starts at unless told otherwise.
var Epoch = time.Date(2024, 12, 4, 9, 0, 0, 0, time.UTC)

// NewManualClock creates a clock starting at Epoch that advances one second
// per call to Now.
func NewManualClock() *ManualClock {
	return NewManualClockAt(Epoch, time.Second)
}

// NewManualClockAt creates a clock starting at start that advances by step.
func NewManualClockAt(start time.Time, step time.Duration) *ManualClock {
	return &ManualClock{start: start, now: start, step: step}
}

// Now returns the current instant and advances the clock by its step.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the instant the next call to Now will return.
func (c *ManualClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d without consuming a tick.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Reset rewinds the clock to its starting instant.
func (c *ManualClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
