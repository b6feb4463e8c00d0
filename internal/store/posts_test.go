package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spearfished/internal/geo"
	"github.com/roach88/spearfished/internal/post"
	"github.com/roach88/spearfished/internal/testutil"
)

func testPost(id string) post.Post {
	return post.Post{
		ID:           id,
		Username:     "FishHunter",
		ImageURL:     "https://example.com/" + id + ".jpg",
		FishType:     "Mahi Mahi",
		Description:  "off the reef",
		Location:     geo.Coordinate{Latitude: 25.7617, Longitude: -80.1918},
		LocationName: "Miami Beach",
	}
}

func TestInsertPost_AssignsTimestamp(t *testing.T) {
	s, clock := createTestStore(t)
	ctx := context.Background()

	want := clock.Peek()
	p := testPost("post-1")
	p.Timestamp = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	ts, err := s.InsertPost(ctx, p)
	require.NoError(t, err)
	assert.True(t, ts.Equal(want), "store must ignore caller timestamp")

	rows, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "post-1", rows[0].ID)
	assert.True(t, rows[0].Timestamp.Equal(want))

	got, err := post.Unmarshal(rows[0].ID, rows[0].Data)
	require.NoError(t, err)
	assert.True(t, got.Timestamp.Equal(want))
	assert.Equal(t, p.FishType, got.FishType)
	assert.Equal(t, p.Location, got.Location)
}

func TestInsertPost_Duplicate(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	_, err := s.InsertPost(ctx, testPost("post-1"))
	require.NoError(t, err)

	_, err = s.InsertPost(ctx, testPost("post-1"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestListPosts_NewestFirst(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.InsertPost(ctx, testPost(id))
		require.NoError(t, err)
	}

	rows, err := s.ListPosts(ctx)
	require.NoError(t, err)

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestListPosts_TiesBreakByInsertionOrder(t *testing.T) {
	frozen := testutil.NewManualClockAt(testutil.Epoch, 0)
	s, err := Open(t.TempDir()+"/test.db", WithClock(frozen))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		_, err := s.InsertPost(ctx, testPost(id))
		require.NoError(t, err)
	}

	rows, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "third", rows[0].ID)
	assert.Equal(t, "second", rows[1].ID)
	assert.Equal(t, "first", rows[2].ID)
}

func TestListPosts_Empty(t *testing.T) {
	s, _ := createTestStore(t)

	rows, err := s.ListPosts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestInsertPostRow_RawData(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	err := s.InsertPostRow(ctx, PostRow{ID: "raw", Data: []byte(`{"username":"x"}`), Timestamp: testutil.Epoch})
	require.NoError(t, err)

	err = s.InsertPostRow(ctx, PostRow{ID: "raw", Data: []byte(`{}`), Timestamp: testutil.Epoch})
	assert.ErrorIs(t, err, ErrDuplicate)

	rows, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.JSONEq(t, `{"username":"x"}`, string(rows[0].Data))
}

func TestDeletePost(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	_, err := s.InsertPost(ctx, testPost("gone"))
	require.NoError(t, err)

	deleted, err := s.DeletePost(ctx, "gone")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeletePost(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, deleted)

	rows, err := s.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
