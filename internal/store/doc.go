// Package store provides the SQLite-backed local backend.
//
// It holds the three kinds of state the managed platform would otherwise
// hold:
//   - Posts: JSON post records keyed by post id, with a store-assigned timestamp
//   - Blobs: uploaded image bytes keyed by object key
//   - Users: local accounts (email + bcrypt hash)
//
// # Ordering
//
// Post listings are ordered newest first: ORDER BY ts DESC, seq DESC. The seq
// column breaks timestamp ties by insertion order, so repeated listings of the
// same data are identical.
//
// # Timestamps
//
// The store assigns post timestamps from its Clock at insert time, so
// callers cannot backdate a post. Tests inject a deterministic clock.
//
// # Connection settings
//
// Open passes these as driver DSN parameters so every connection gets them:
// journal_mode=WAL, synchronous=NORMAL, busy_timeout=5000, foreign_keys=on.
package store
