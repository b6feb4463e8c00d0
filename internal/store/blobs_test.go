package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobs_PutGet(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBlob(ctx, "posts/a.jpg", []byte{0xFF, 0xD8}, "image/jpeg"))

	b, err := s.GetBlob(ctx, "posts/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8}, b.Data)
	assert.Equal(t, "image/jpeg", b.ContentType)

	ok, err := s.HasBlob(ctx, "posts/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBlobs_Overwrite(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBlob(ctx, "k", []byte("one"), "text/plain"))
	require.NoError(t, s.PutBlob(ctx, "k", []byte("two"), "image/png"))

	b, err := s.GetBlob(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(b.Data))
	assert.Equal(t, "image/png", b.ContentType)
}

func TestBlobs_Missing(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	_, err := s.GetBlob(ctx, "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	ok, err := s.HasBlob(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}
