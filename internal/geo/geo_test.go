package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		want  bool
	}{
		{"origin", Coordinate{0, 0}, true},
		{"upper bounds", Coordinate{90, 180}, true},
		{"lower bounds", Coordinate{-90, -180}, true},
		{"miami", Coordinate{25.7617, -80.1918}, true},
		{"lat NaN", Coordinate{math.NaN(), 0}, false},
		{"lon NaN", Coordinate{0, math.NaN()}, false},
		{"lat +Inf", Coordinate{math.Inf(1), 0}, false},
		{"lat -Inf", Coordinate{math.Inf(-1), 0}, false},
		{"lon +Inf", Coordinate{0, math.Inf(1)}, false},
		{"lon -Inf", Coordinate{0, math.Inf(-1)}, false},
		{"lat 91", Coordinate{91, 0}, false},
		{"lat -91", Coordinate{-91, 0}, false},
		{"lon -181", Coordinate{0, -181}, false},
		{"lon 181", Coordinate{0, 181}, false},
		{"just over lat", Coordinate{math.Nextafter(90, 91), 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.coord))
			assert.Equal(t, tt.want, tt.coord.IsValid())
		})
	}
}

func TestIsValid_Grid(t *testing.T) {
	// Every in-range grid point is valid; shifting it outside the range is not.
	for lat := -90.0; lat <= 90; lat += 7.5 {
		for lon := -180.0; lon <= 180; lon += 15 {
			c := Coordinate{lat, lon}
			assert.True(t, IsValid(c), "expected %v valid", c)
			assert.False(t, IsValid(Coordinate{lat + 181, lon}), "lat shifted out of range")
			assert.False(t, IsValid(Coordinate{lat, lon + 361}), "lon shifted out of range")
		}
	}
}

type marker struct {
	name string
	at   Coordinate
}

func (m marker) Coordinate() Coordinate { return m.at }

func TestPins_SkipsInvalidAndKeepsOrder(t *testing.T) {
	items := []marker{
		{"a", Coordinate{25.76, -80.19}},
		{"bad", Coordinate{math.NaN(), 1}},
		{"b", Coordinate{25.86, -80.12}},
		{"far", Coordinate{120, 0}},
	}

	pins := Pins(items)
	if assert.Len(t, pins, 2) {
		assert.Equal(t, "a", pins[0].Item.name)
		assert.Equal(t, "b", pins[1].Item.name)
		assert.Equal(t, Coordinate{25.86, -80.12}, pins[1].Coordinate)
	}
}

func TestPins_Empty(t *testing.T) {
	assert.Empty(t, Pins[marker](nil))
}
