package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Blob is a stored object.
type Blob struct {
	Key         string
	Data        []byte
	ContentType string
}

// PutBlob writes an object, replacing any existing object at key.
func (s *Store) PutBlob(ctx context.Context, key string, data []byte, contentType string) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (key, data, content_type, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			content_type = excluded.content_type
	`, key, data, contentType, s.clock.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("put blob %s: %w", key, err)
	}
	return nil
}

// GetBlob reads the object stored at key.
// Returns sql.ErrNoRows (wrapped) if not found.
func (s *Store) GetBlob(ctx context.Context, key string) (Blob, error) {
	b := Blob{Key: key}
	err := s.db.QueryRowContext(ctx, `
		SELECT data, content_type FROM blobs WHERE key = ?
	`, key).Scan(&b.Data, &b.ContentType)
	if err != nil {
		return Blob{}, fmt.Errorf("get blob %s: %w", key, err)
	}
	return b, nil
}

// HasBlob reports whether an object exists at key.
func (s *Store) HasBlob(ctx context.Context, key string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM blobs WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has blob %s: %w", key, err)
	}
	return true, nil
}
