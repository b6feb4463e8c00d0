package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spearfished/internal/feed"
	"github.com/roach88/spearfished/internal/geo"
	"github.com/roach88/spearfished/internal/post"
	"github.com/roach88/spearfished/internal/testutil"
)

var (
	grouperPost = post.Post{
		ID:           "b",
		Username:     "SpearMaster",
		Timestamp:    testutil.Epoch.Add(time.Minute),
		ImageURL:     "http://localhost:8080/blobs/posts/b.png",
		FishType:     "Grouper",
		Description:  "Great day out on the water",
		Location:     geo.Coordinate{Latitude: 25.8617, Longitude: -80.1218},
		LocationName: "Key Largo",
	}
	mahiPost = post.Post{
		ID:           "a",
		Username:     "FishHunter",
		Timestamp:    testutil.Epoch,
		ImageURL:     "http://localhost:8080/blobs/posts/a.png",
		FishType:     "Mahi Mahi",
		Description:  "Caught this beautiful fish!",
		Location:     geo.Coordinate{Latitude: 25.7617, Longitude: -80.1918},
		LocationName: "Miami Beach",
	}
	cobiaPost = post.Post{
		ID:        "c",
		Username:  "diver@example.com",
		Timestamp: testutil.Epoch,
		ImageURL:  "http://localhost:8080/blobs/posts/c.jpg",
		FishType:  "Cobia",
		Location:  geo.Coordinate{Latitude: 24.5551, Longitude: -81.78},
	}
)

func TestRenderFeed_Golden(t *testing.T) {
	tests := []struct {
		name string
		snap feed.Snapshot
	}{
		{
			name: "feed_live",
			snap: feed.Snapshot{Version: 3, State: feed.StateLive, Posts: []post.Post{grouperPost, mahiPost}},
		},
		{
			name: "feed_degraded",
			snap: feed.Snapshot{
				Version: 7,
				State:   feed.StateLiveWithError,
				Posts:   []post.Post{cobiaPost},
				Err:     assert.AnError,
				Dropped: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newFeedView(tt.snap)
			if tt.snap.Err != nil {
				v.Error = "subscription lost"
			}

			buf := &bytes.Buffer{}
			require.NoError(t, renderFeed(buf, v))
			newGoldie(t).Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestRenderMap_Golden(t *testing.T) {
	offMap := mahiPost
	offMap.Location = geo.Coordinate{Latitude: 91, Longitude: 0}

	v := newMapView(feed.Snapshot{State: feed.StateLive, Posts: []post.Post{grouperPost, offMap, cobiaPost}})
	require.Len(t, v.Pins, 2)

	buf := &bytes.Buffer{}
	require.NoError(t, renderMap(buf, v))
	newGoldie(t).Assert(t, "feed_map", buf.Bytes())
}

func TestNewMapView_EmptyUsesDefaultCenter(t *testing.T) {
	v := newMapView(feed.Snapshot{State: feed.StateLive})
	assert.Equal(t, geo.DefaultMapCenter, v.Center)
	assert.Empty(t, v.Pins)
}

func TestNewFeedView(t *testing.T) {
	v := newFeedView(feed.Snapshot{Version: 2, State: feed.StateLiveWithError, Err: assert.AnError, Posts: []post.Post{mahiPost}})
	assert.Equal(t, uint64(2), v.Version)
	assert.Equal(t, "live_with_error", v.State)
	assert.Equal(t, assert.AnError.Error(), v.Error)
	assert.Equal(t, []post.Post{mahiPost}, v.Posts)
}

func TestFeedCommand_SeededText(t *testing.T) {
	stdout, _, err := cliRun(t, t.TempDir(), nil, "feed", "--seed")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Feed live")
	assert.Contains(t, stdout, "2 post(s)")
	assert.Contains(t, stdout, "Mahi Mahi  by FishHunter")
	assert.Contains(t, stdout, "Grouper  by SpearMaster")
	assert.Contains(t, stdout, "Key Largo (25.8617, -80.1218)")
}

func TestFeedCommand_MapJSON(t *testing.T) {
	dir := t.TempDir()

	_, _, err := cliRun(t, dir, nil, "feed", "--seed")
	require.NoError(t, err)

	// Second run reads what the first one seeded.
	stdout, _, err := cliRun(t, dir, nil, "--format", "json", "feed", "--map")
	require.NoError(t, err)

	var resp struct {
		Status string  `json:"status"`
		Data   mapView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Pins, 2)
	assert.Equal(t, resp.Data.Pins[0].Location, resp.Data.Center)
}

func TestFeedCommand_Empty(t *testing.T) {
	stdout, _, err := cliRun(t, t.TempDir(), nil, "--format", "json", "feed")
	require.NoError(t, err)

	var resp struct {
		Data feedView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "live", resp.Data.State)
	assert.Empty(t, resp.Data.Posts)
}
