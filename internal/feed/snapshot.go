package feed

import (
	"slices"

	"github.com/roach88/spearfished/internal/geo"
	"github.com/roach88/spearfished/internal/post"
)

// State is the synchronizer lifecycle state.
type State int

const (
	StateIdle State = iota
	StateSubscribing
	StateLive
	StateLiveWithError
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubscribing:
		return "subscribing"
	case StateLive:
		return "live"
	case StateLiveWithError:
		return "live_with_error"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Snapshot is the feed as of one update. Each observer receives its own
// copy; Posts is newest first, in exactly the order the store delivered.
type Snapshot struct {
	Version uint64
	State   State
	Posts   []post.Post
	// Err is the last subscription error, or nil when Live.
	Err error
	// Dropped counts documents in the last batch that failed to decode.
	Dropped int
}

// Pins returns map markers for the posts with displayable coordinates.
func (s Snapshot) Pins() []geo.Pin[post.Post] {
	return geo.Pins(s.Posts)
}

func (s Snapshot) clone() Snapshot {
	s.Posts = slices.Clone(s.Posts)
	if s.Posts == nil {
		s.Posts = []post.Post{}
	}
	return s
}
