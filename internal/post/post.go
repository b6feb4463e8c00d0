package post

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/spearfished/internal/geo"
)

// Record field names shared by every document store adapter.
const (
	FieldID           = "id"
	FieldUsername     = "username"
	FieldTimestamp    = "timestamp"
	FieldImageURL     = "imageUrl"
	FieldFishType     = "fishType"
	FieldDescription  = "description"
	FieldLocation     = "location"
	FieldLocationName = "locationName"
	FieldLatitude     = "latitude"
	FieldLongitude    = "longitude"
)

// Post is a published catch.
//
// Posts are created once at the end of a successful publish and never
// mutated afterwards. Timestamp is assigned by the document store.
type Post struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Timestamp    time.Time      `json:"timestamp"`
	ImageURL     string         `json:"imageUrl"`
	FishType     string         `json:"fishType"`
	Description  string         `json:"description"`
	Location     geo.Coordinate `json:"location"`
	LocationName string         `json:"locationName"`
}

// Coordinate returns the catch location. Satisfies geo.Located.
func (p Post) Coordinate() geo.Coordinate {
	return p.Location
}

// Check verifies the fields a post must carry before it is written.
// Timestamp is not checked; the store assigns it.
func (p Post) Check() error {
	if strings.TrimSpace(p.ID) == "" {
		return &FieldError{Field: FieldID, Problem: ProblemMissing}
	}
	if strings.TrimSpace(p.Username) == "" {
		return &FieldError{Field: FieldUsername, Problem: ProblemMissing}
	}
	if strings.TrimSpace(p.ImageURL) == "" {
		return &FieldError{Field: FieldImageURL, Problem: ProblemMissing}
	}
	if strings.TrimSpace(p.FishType) == "" {
		return &FieldError{Field: FieldFishType, Problem: ProblemMissing}
	}
	if !geo.IsValid(p.Location) {
		return &FieldError{
			Field:   FieldLocation,
			Problem: ProblemInvalid,
			Detail:  fmt.Sprintf("coordinate %s out of range", p.Location),
		}
	}
	return nil
}

// Marshal encodes the post as a JSON record document.
func Marshal(p Post) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal post %s: %w", p.ID, err)
	}
	return b, nil
}

// Unmarshal decodes a JSON record document stored under id.
// The JSON is decoded generically first so that Decode applies the same
// field checks to every backend.
func Unmarshal(id string, data []byte) (Post, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Post{}, &FieldError{Field: "", Problem: ProblemType, Detail: err.Error()}
	}
	return Decode(id, raw)
}
