package post

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genproto/googleapis/type/latlng"

	"github.com/roach88/spearfished/internal/geo"
)

// Decode builds a Post from a raw document stored under id.
//
// The document key is authoritative for the post id; an "id" field inside
// the record is ignored. Location may be a Firestore GeoPoint or a
// {latitude, longitude} map. Timestamp may be a time.Time or an RFC 3339
// string.
func Decode(id string, data map[string]any) (Post, error) {
	if strings.TrimSpace(id) == "" {
		return Post{}, &FieldError{Field: FieldID, Problem: ProblemMissing}
	}
	if data == nil {
		return Post{}, &FieldError{Problem: ProblemMissing, Detail: "empty document"}
	}

	p := Post{ID: id}
	var err error

	if p.Location, err = decodeLocation(data); err != nil {
		return Post{}, err
	}
	if p.Username, err = requiredString(data, FieldUsername); err != nil {
		return Post{}, err
	}
	if p.ImageURL, err = requiredString(data, FieldImageURL); err != nil {
		return Post{}, err
	}
	if p.FishType, err = requiredString(data, FieldFishType); err != nil {
		return Post{}, err
	}
	if p.Timestamp, err = decodeTimestamp(data); err != nil {
		return Post{}, err
	}
	if p.Description, err = optionalString(data, FieldDescription); err != nil {
		return Post{}, err
	}
	if p.LocationName, err = optionalString(data, FieldLocationName); err != nil {
		return Post{}, err
	}
	return p, nil
}

func requiredString(data map[string]any, field string) (string, error) {
	v, ok := data[field]
	if !ok || v == nil {
		return "", &FieldError{Field: field, Problem: ProblemMissing}
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: field, Problem: ProblemType, Detail: fmt.Sprintf("got %T", v)}
	}
	if strings.TrimSpace(s) == "" {
		return "", &FieldError{Field: field, Problem: ProblemMissing, Detail: "empty"}
	}
	return s, nil
}

func optionalString(data map[string]any, field string) (string, error) {
	v, ok := data[field]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: field, Problem: ProblemType, Detail: fmt.Sprintf("got %T", v)}
	}
	return s, nil
}

func decodeTimestamp(data map[string]any) (time.Time, error) {
	v, ok := data[FieldTimestamp]
	if !ok || v == nil {
		return time.Time{}, &FieldError{Field: FieldTimestamp, Problem: ProblemMissing}
	}
	switch ts := v.(type) {
	case time.Time:
		if ts.IsZero() {
			return time.Time{}, &FieldError{Field: FieldTimestamp, Problem: ProblemMissing, Detail: "zero time"}
		}
		return ts, nil
	case *time.Time:
		if ts == nil || ts.IsZero() {
			return time.Time{}, &FieldError{Field: FieldTimestamp, Problem: ProblemMissing, Detail: "zero time"}
		}
		return *ts, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return time.Time{}, &FieldError{Field: FieldTimestamp, Problem: ProblemInvalid, Detail: err.Error()}
		}
		return t, nil
	default:
		return time.Time{}, &FieldError{Field: FieldTimestamp, Problem: ProblemType, Detail: fmt.Sprintf("got %T", v)}
	}
}

func decodeLocation(data map[string]any) (geo.Coordinate, error) {
	v, ok := data[FieldLocation]
	if !ok || v == nil {
		return geo.Coordinate{}, &FieldError{Field: FieldLocation, Problem: ProblemMissing}
	}

	var c geo.Coordinate
	switch loc := v.(type) {
	case *latlng.LatLng:
		if loc == nil {
			return geo.Coordinate{}, &FieldError{Field: FieldLocation, Problem: ProblemMissing}
		}
		c = geo.Coordinate{Latitude: loc.GetLatitude(), Longitude: loc.GetLongitude()}
	case map[string]any:
		lat, err := number(loc, FieldLatitude)
		if err != nil {
			return geo.Coordinate{}, err
		}
		lon, err := number(loc, FieldLongitude)
		if err != nil {
			return geo.Coordinate{}, err
		}
		c = geo.Coordinate{Latitude: lat, Longitude: lon}
	default:
		return geo.Coordinate{}, &FieldError{Field: FieldLocation, Problem: ProblemType, Detail: fmt.Sprintf("got %T", v)}
	}

	if !geo.IsValid(c) {
		return geo.Coordinate{}, &FieldError{
			Field:   FieldLocation,
			Problem: ProblemInvalid,
			Detail:  fmt.Sprintf("coordinate %s out of range", c),
		}
	}
	return c, nil
}

func number(m map[string]any, key string) (float64, error) {
	field := FieldLocation + "." + key
	v, ok := m[key]
	if !ok || v == nil {
		return 0, &FieldError{Field: field, Problem: ProblemMissing}
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, &FieldError{Field: field, Problem: ProblemType, Detail: err.Error()}
		}
		return f, nil
	default:
		return 0, &FieldError{Field: field, Problem: ProblemType, Detail: fmt.Sprintf("got %T", v)}
	}
}
