package docstore

import (
	"github.com/roach88/spearfished/internal/post"
)

// record builds the stored field map for p, without timestamp. Each backend
// adds the timestamp and location in its own native form.
func record(p post.Post) map[string]any {
	return map[string]any{
		post.FieldID:           p.ID,
		post.FieldUsername:     p.Username,
		post.FieldImageURL:     p.ImageURL,
		post.FieldFishType:     p.FishType,
		post.FieldDescription:  p.Description,
		post.FieldLocationName: p.LocationName,
	}
}

func locationMap(p post.Post) map[string]any {
	return map[string]any{
		post.FieldLatitude:  p.Location.Latitude,
		post.FieldLongitude: p.Location.Longitude,
	}
}

// checkPost rejects posts that cannot be encoded as a valid record.
func checkPost(p post.Post) error {
	if err := p.Check(); err != nil {
		return &WriteError{ID: p.ID, Reason: ReasonEncode, Err: err}
	}
	return nil
}
