package docstore

import (
	"context"
	"time"

	"github.com/roach88/spearfished/internal/post"
)

// DefaultCollection is the collection (or table) that holds post documents.
const DefaultCollection = "posts"

// RawDocument is a post document as the backend returned it.
// Data is nil if the backend could not read the document body.
type RawDocument struct {
	ID   string
	Data map[string]any
}

// Batch is the complete current set of post documents, newest first.
type Batch struct {
	Documents []RawDocument
}

// Event is one delivery on a subscription: either a Batch or a terminal Err.
type Event struct {
	Batch *Batch
	Err   error
}

// Receipt confirms a successful write.
type Receipt struct {
	ID        string
	Timestamp time.Time
}

// Writer creates post documents.
type Writer interface {
	// Write creates the document for p under p.ID. The store assigns the
	// timestamp; p.Timestamp is ignored. Failures are *WriteError.
	Write(ctx context.Context, p post.Post) (Receipt, error)
}

// Subscriber streams ordered post snapshots.
type Subscriber interface {
	// Subscribe starts delivering events to sink on a backend goroutine.
	// The first event is the initial snapshot (or an error).
	Subscribe(ctx context.Context, sink func(Event)) (Subscription, error)
}

// Store is a document store that can both write and stream posts.
type Store interface {
	Writer
	Subscriber
}

// Subscription is a live change stream.
type Subscription interface {
	// Close stops the stream. Idempotent; returns once the sink will not be
	// called again.
	Close() error
}
