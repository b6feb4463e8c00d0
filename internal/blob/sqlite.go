package blob

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/spearfished/internal/store"
)

// SQLiteStore stores objects in the local backend. URLs point at the local
// HTTP gateway's blob route.
type SQLiteStore struct {
	store   *store.Store
	baseURL string
}

// NewSQLiteStore creates a store over s. baseURL is the prefix objects are
// served under, e.g. "http://localhost:8080/blobs".
func NewSQLiteStore(s *store.Store, baseURL string) *SQLiteStore {
	return &SQLiteStore{store: s, baseURL: strings.TrimRight(baseURL, "/")}
}

// Put writes the object.
func (s *SQLiteStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return s.store.PutBlob(ctx, key, data, contentType)
}

// ResolveURL returns the gateway URL for key, or ErrNotFound if no object
// exists there.
func (s *SQLiteStore) ResolveURL(ctx context.Context, key string) (string, error) {
	ok, err := s.store.HasBlob(ctx, key)
	if err != nil {
		return "", fmt.Errorf("resolve url: %w", err)
	}
	if !ok {
		return "", ErrNotFound
	}
	return s.baseURL + "/" + key, nil
}

// Get reads an object back. Used by the gateway.
func (s *SQLiteStore) Get(ctx context.Context, key string) (store.Blob, error) {
	return s.store.GetBlob(ctx, key)
}
