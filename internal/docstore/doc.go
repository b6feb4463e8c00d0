// Package docstore adapts document databases to the post feed.
//
// A Store does two things: Write creates a single post document keyed by
// the post id, and Subscribe streams the complete, newest-first set of post
// documents every time it changes. Documents are delivered raw; decoding
// into post.Post (and dropping malformed documents) is the feed's job.
//
// Adapters:
//   - SQLite: the local backend in internal/store, with an in-process Hub
//     signalling subscriptions to re-query
//   - Firestore: a live query on the "posts" collection
//   - Postgres: LISTEN/NOTIFY on a posts table
//
// # Subscription contract
//
//   - Every Batch is the full current ordered set, never a delta.
//   - A subscription error is delivered once as Event{Err} and ends the
//     subscription; the sink is not called again.
//   - Close is idempotent. When it returns the sink will not be called again.
//     Close must not be called from inside the sink.
package docstore
