package blob

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/roach88/spearfished/internal/ids"
)

// downloadTokenKey is the object metadata key Firebase Storage reads
// download tokens from.
const downloadTokenKey = "firebaseStorageDownloadTokens"

// GCSStore stores objects in a Firebase Cloud Storage bucket.
//
// Each object is written with a random download token in its metadata, and
// resolves to the token-bearing Firebase download URL, the same URL the
// Firebase client SDKs hand out.
type GCSStore struct {
	bucket *storage.BucketHandle
	name   string
	tokens ids.Generator
}

// NewGCSStore creates a store over bucket. name is the bucket name used in
// download URLs.
func NewGCSStore(bucket *storage.BucketHandle, name string) *GCSStore {
	return &GCSStore{bucket: bucket, name: name, tokens: ids.RandomGenerator{}}
}

// Put writes the object with a fresh download token.
func (g *GCSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: g.tokens.Generate()}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object writer: %w", err)
	}
	return nil
}

// ResolveURL reads the object's download token and builds its URL.
func (g *GCSStore) ResolveURL(ctx context.Context, key string) (string, error) {
	attrs, err := g.bucket.Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("object attrs: %w", err)
	}

	token := firstToken(attrs.Metadata[downloadTokenKey])
	if token == "" {
		return "", fmt.Errorf("object %s has no download token", key)
	}
	return downloadURL(g.name, key, token), nil
}

// firstToken picks the first of a comma-separated token list.
func firstToken(tokens string) string {
	if i := strings.IndexByte(tokens, ','); i >= 0 {
		tokens = tokens[:i]
	}
	return strings.TrimSpace(tokens)
}

// downloadURL builds a Firebase Storage download URL. The object name is a
// single escaped path segment, slashes included.
func downloadURL(bucket, key, token string) string {
	return fmt.Sprintf(
		"https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(key), url.QueryEscape(token),
	)
}
