package geotag

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/roach88/spearfished/internal/geo"
)

// Extract returns the GPS coordinate recorded in the image's EXIF metadata.
//
// Latitude is negated for an "S" reference and longitude for a "W"
// reference. The second return value is false when the payload has no
// usable geotag; Extract never panics on hostile input.
func Extract(payload []byte) (c geo.Coordinate, ok bool) {
	if len(payload) == 0 {
		return geo.Coordinate{}, false
	}

	defer func() {
		if r := recover(); r != nil {
			c, ok = geo.Coordinate{}, false
		}
	}()

	// A non-critical error (a broken unrelated sub-IFD) still leaves the GPS
	// block readable.
	x, err := exif.Decode(bytes.NewReader(payload))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return geo.Coordinate{}, false
	}

	lat, lon, err := x.LatLong()
	if err != nil {
		return geo.Coordinate{}, false
	}

	c = geo.Coordinate{Latitude: lat, Longitude: lon}
	if !geo.IsValid(c) {
		return geo.Coordinate{}, false
	}
	return c, true
}
