package blob

import (
	"context"
	"net/http"
	"strings"

	"github.com/roach88/spearfished/internal/ids"
)

// DefaultPrefix is the key prefix for post images.
const DefaultPrefix = "posts/"

// Store is an object store.
type Store interface {
	// Put writes data under key, replacing any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// ResolveURL returns a URL from which the object at key can be fetched.
	ResolveURL(ctx context.Context, key string) (string, error)
}

// Upload is the result of a successful upload.
type Upload struct {
	Key string
	URL string
}

// Uploader writes payloads under fresh keys and resolves their URLs.
// Safe for concurrent use if the Store and id generator are.
type Uploader struct {
	store  Store
	ids    ids.Generator
	prefix string
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithPrefix sets the key prefix. Default DefaultPrefix.
func WithPrefix(prefix string) UploaderOption {
	return func(u *Uploader) { u.prefix = prefix }
}

// WithIDs sets the key generator. Default random UUIDs.
func WithIDs(g ids.Generator) UploaderOption {
	return func(u *Uploader) {
		if g != nil {
			u.ids = g
		}
	}
}

// NewUploader creates an uploader over s.
func NewUploader(s Store, opts ...UploaderOption) *Uploader {
	u := &Uploader{store: s, ids: ids.RandomGenerator{}, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload stores payload and returns its key and URL.
//
// An empty contentType is sniffed from the payload. The key extension
// follows the content type, defaulting to ".jpg".
func (u *Uploader) Upload(ctx context.Context, payload []byte, contentType string) (Upload, error) {
	if contentType == "" {
		contentType = http.DetectContentType(payload)
	}
	key := u.prefix + u.ids.Generate() + extension(contentType)

	if err := u.store.Put(ctx, key, payload, contentType); err != nil {
		return Upload{}, &StorageWriteError{Key: key, Err: err}
	}

	url, err := u.store.ResolveURL(ctx, key)
	if err != nil {
		return Upload{}, &StorageURLResolutionError{Key: key, Err: err}
	}
	if url == "" {
		return Upload{}, &StorageURLResolutionError{Key: key, Err: errEmptyURL}
	}

	return Upload{Key: key, URL: url}, nil
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/heic": ".heic",
	"image/heif": ".heif",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/tiff": ".tiff",
}

func extension(contentType string) string {
	mt := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if ext, ok := extensions[mt]; ok {
		return ext
	}
	return ".jpg"
}
