// Package feed keeps a live, ordered view of community posts.
//
// A Synchronizer subscribes to a docstore.Subscriber and turns its raw
// batches into immutable Snapshots for observers (the feed list and the map).
//
// # Single-writer loop
//
// All state changes happen on one goroutine. The store's sink only enqueues
// events; the loop dequeues them in FIFO order, decodes documents, replaces
// the ordered post list wholesale and notifies observers. Reconnect timers
// enqueue events the same way.
//
// # States
//
//	Idle -> Subscribing -> Live <-> LiveWithError
//	                 \______________/
//	any -> Closed
//
// A subscription error keeps the last good posts, records the error and,
// unless reconnection is disabled, schedules a resubscribe with exponential
// backoff. The next successful batch returns the feed to Live.
//
// # Malformed documents
//
// Documents that fail post.Decode are dropped, logged and counted in
// Snapshot.Dropped. They never turn the feed into an error state.
package feed
