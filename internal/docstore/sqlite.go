package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/spearfished/internal/post"
	"github.com/roach88/spearfished/internal/store"
)

// SQLite is the document store over the local SQLite backend.
//
// Writes go through store.InsertPost, which assigns the timestamp. Every
// successful write or delete wakes all subscriptions through the Hub, and
// each subscription re-reads the full ordered listing.
type SQLite struct {
	store *store.Store
	hub   *Hub
}

// NewSQLite creates a document store over s.
func NewSQLite(s *store.Store) *SQLite {
	return &SQLite{store: s, hub: NewHub()}
}

// Hub exposes the change hub, for callers that modify the posts table
// directly.
func (d *SQLite) Hub() *Hub {
	return d.hub
}

// Write creates the post document.
func (d *SQLite) Write(ctx context.Context, p post.Post) (Receipt, error) {
	if err := checkPost(p); err != nil {
		return Receipt{}, err
	}

	ts, err := d.store.InsertPost(ctx, p)
	if err != nil {
		reason := ReasonTransport
		if errors.Is(err, store.ErrDuplicate) {
			reason = ReasonDuplicate
		}
		return Receipt{}, &WriteError{ID: p.ID, Reason: reason, Err: err}
	}

	d.hub.Notify()
	return Receipt{ID: p.ID, Timestamp: ts}, nil
}

// Import stores a raw record as-is and notifies subscribers. Used for
// seeding and for tests that need documents the writer would reject.
func (d *SQLite) Import(ctx context.Context, row store.PostRow) error {
	if err := d.store.InsertPostRow(ctx, row); err != nil {
		return fmt.Errorf("import post: %w", err)
	}
	d.hub.Notify()
	return nil
}

// Delete removes a post. Deletion is not part of the publish flow; it stands
// in for removal by an outside party. Reports whether a post was removed.
func (d *SQLite) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := d.store.DeletePost(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		d.hub.Notify()
	}
	return deleted, nil
}

// Subscribe streams the ordered post set.
func (d *SQLite) Subscribe(ctx context.Context, sink func(Event)) (Subscription, error) {
	if sink == nil {
		return nil, errors.New("subscribe: nil sink")
	}
	changed, unwatch := d.hub.Watch()
	return startWatch(ctx, d.fetch, changed, sink, unwatch), nil
}

func (d *SQLite) fetch(ctx context.Context) ([]RawDocument, error) {
	rows, err := d.store.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	docs := make([]RawDocument, 0, len(rows))
	for _, r := range rows {
		var data map[string]any
		if err := json.Unmarshal(r.Data, &data); err != nil {
			data = nil
		}
		docs = append(docs, RawDocument{ID: r.ID, Data: data})
	}
	return docs, nil
}
