package geo

import (
	"fmt"
	"math"
)

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DefaultMapCenter is the initial map camera position (Miami).
var DefaultMapCenter = Coordinate{Latitude: 25.7617, Longitude: -80.1918}

// IsValid reports whether both components are finite and within range.
func IsValid(c Coordinate) bool {
	return finite(c.Latitude) && finite(c.Longitude) &&
		math.Abs(c.Latitude) <= 90 && math.Abs(c.Longitude) <= 180
}

// IsValid is the method form of the package-level IsValid.
func (c Coordinate) IsValid() bool {
	return IsValid(c)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Latitude, c.Longitude)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
