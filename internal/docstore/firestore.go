package docstore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/genproto/googleapis/type/latlng"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/roach88/spearfished/internal/post"
)

// Firestore is the document store over a Cloud Firestore collection.
//
// Documents are created with the post id as document id, the timestamp as
// a server timestamp and the location as a GeoPoint. Subscriptions use a
// live query ordered by timestamp descending.
type Firestore struct {
	client     *firestore.Client
	collection string
}

// NewFirestore creates a document store over the named collection.
// An empty collection means DefaultCollection.
func NewFirestore(client *firestore.Client, collection string) *Firestore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Firestore{client: client, collection: collection}
}

// Write creates the post document. Create fails with AlreadyExists if the id
// is taken, so a retried publish is detected rather than duplicated.
func (f *Firestore) Write(ctx context.Context, p post.Post) (Receipt, error) {
	if err := checkPost(p); err != nil {
		return Receipt{}, err
	}

	ref := f.client.Collection(f.collection).Doc(p.ID)
	wr, err := ref.Create(ctx, firestoreRecord(p))
	if err != nil {
		return Receipt{}, &WriteError{ID: p.ID, Reason: classifyGRPC(err), Err: err}
	}

	// The server timestamp resolves to the commit time of the write.
	return Receipt{ID: p.ID, Timestamp: wr.UpdateTime}, nil
}

// Subscribe streams the ordered post set from a live query.
func (f *Firestore) Subscribe(ctx context.Context, sink func(Event)) (Subscription, error) {
	if sink == nil {
		return nil, errors.New("subscribe: nil sink")
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &watcher{cancel: cancel, done: make(chan struct{})}

	it := f.client.Collection(f.collection).
		OrderBy(post.FieldTimestamp, firestore.Desc).
		Snapshots(ctx)

	go func() {
		defer close(w.done)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				sink(Event{Err: fmt.Errorf("posts snapshot: %w", err)})
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				sink(Event{Err: fmt.Errorf("read posts snapshot: %w", err)})
				return
			}

			raw := make([]RawDocument, 0, len(docs))
			for _, d := range docs {
				raw = append(raw, RawDocument{ID: d.Ref.ID, Data: d.Data()})
			}
			sink(Event{Batch: &Batch{Documents: raw}})
		}
	}()

	return w, nil
}

// firestoreRecord encodes p in Firestore-native types.
func firestoreRecord(p post.Post) map[string]any {
	m := record(p)
	m[post.FieldTimestamp] = firestore.ServerTimestamp
	m[post.FieldLocation] = &latlng.LatLng{
		Latitude:  p.Location.Latitude,
		Longitude: p.Location.Longitude,
	}
	return m
}

// classifyGRPC maps a Firestore RPC failure to a write reason.
func classifyGRPC(err error) WriteReason {
	switch status.Code(err) {
	case codes.AlreadyExists:
		return ReasonDuplicate
	case codes.PermissionDenied, codes.Unauthenticated:
		return ReasonPermission
	case codes.ResourceExhausted:
		return ReasonQuota
	case codes.InvalidArgument:
		return ReasonEncode
	default:
		return ReasonTransport
	}
}
