package feed

import "sync/atomic"

// versionClock stamps snapshots with strictly increasing versions.
//
// Thread-safety: safe for concurrent use (atomic operations), although only
// the loop goroutine calls Next.
type versionClock struct {
	seq atomic.Uint64
}

// Next returns the next version.
func (c *versionClock) Next() uint64 {
	return c.seq.Add(1)
}

// Current returns the last issued version without incrementing.
func (c *versionClock) Current() uint64 {
	return c.seq.Load()
}
