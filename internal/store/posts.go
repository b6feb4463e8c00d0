package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/spearfished/internal/post"
)

// PostRow is a stored post record as read back from the posts table.
// Data is the raw JSON record; decoding is left to the caller so that a
// malformed row can be skipped without failing the whole listing.
type PostRow struct {
	ID        string
	Data      []byte
	Timestamp time.Time
}

// InsertPost stores p under p.ID with a store-assigned timestamp and returns
// that timestamp. Any timestamp already on p is ignored.
//
// Returns ErrDuplicate (wrapped) if a post with the same id exists.
func (s *Store) InsertPost(ctx context.Context, p post.Post) (time.Time, error) {
	ts := s.clock.Now().UTC()
	p.Timestamp = ts

	data, err := post.Marshal(p)
	if err != nil {
		return time.Time{}, fmt.Errorf("insert post: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO posts (id, data, ts)
		VALUES (?, ?, ?)
	`, p.ID, string(data), ts.UnixNano())
	if err != nil {
		if isUniqueViolation(err) {
			return time.Time{}, fmt.Errorf("insert post %s: %w", p.ID, ErrDuplicate)
		}
		return time.Time{}, fmt.Errorf("insert post: %w", err)
	}

	return ts, nil
}

// InsertPostRow stores a raw record as-is. Used to seed fixtures and to
// import documents that did not pass through InsertPost.
func (s *Store) InsertPostRow(ctx context.Context, row PostRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, data, ts)
		VALUES (?, ?, ?)
	`, row.ID, string(row.Data), row.Timestamp.UnixNano())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert post row %s: %w", row.ID, ErrDuplicate)
		}
		return fmt.Errorf("insert post row: %w", err)
	}
	return nil
}

// ListPosts returns every stored post, newest first.
// Ordering is deterministic: ORDER BY ts DESC, seq DESC.
//
// Returns an empty slice (not nil) if there are no posts.
func (s *Store) ListPosts(ctx context.Context) ([]PostRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data, ts
		FROM posts
		ORDER BY ts DESC, seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	out := []PostRow{}
	for rows.Next() {
		var (
			row  PostRow
			data string
			ts   int64
		)
		if err := rows.Scan(&row.ID, &data, &ts); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		row.Data = []byte(data)
		row.Timestamp = time.Unix(0, ts).UTC()
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return out, nil
}

// DeletePost removes the post with the given id.
// Reports whether a row was deleted.
func (s *Store) DeletePost(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return n > 0, nil
}
