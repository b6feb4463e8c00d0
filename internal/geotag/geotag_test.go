package geotag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spearfished/internal/testutil"
)

func TestExtract_NorthWestTIFF(t *testing.T) {
	c, ok := Extract(testutil.GPSTIFF("N", 25, 30, "W", 80, 12))
	require.True(t, ok)
	assert.InDelta(t, 25.5, c.Latitude, 1e-9)
	assert.InDelta(t, -80.2, c.Longitude, 1e-9)
}

func TestExtract_SouthEastTIFF(t *testing.T) {
	c, ok := Extract(testutil.GPSTIFF("S", 33, 51, "E", 151, 12))
	require.True(t, ok)
	assert.InDelta(t, -33.85, c.Latitude, 1e-9)
	assert.InDelta(t, 151.2, c.Longitude, 1e-9)
}

func TestExtract_JPEG(t *testing.T) {
	c, ok := Extract(testutil.WrapJPEG(testutil.GPSTIFF("N", 25, 30, "W", 80, 12)))
	require.True(t, ok)
	assert.InDelta(t, 25.5, c.Latitude, 1e-9)
	assert.InDelta(t, -80.2, c.Longitude, 1e-9)
}

func TestExtract_OutOfRangeIsAbsent(t *testing.T) {
	_, ok := Extract(testutil.GPSTIFF("N", 95, 0, "W", 80, 0))
	assert.False(t, ok)
}

func TestExtract_Absent(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"no gps block", testutil.NoGPSTIFF()},
		{"garbage", []byte("definitely not an image")},
		{"truncated", testutil.GPSTIFF("N", 25, 30, "W", 80, 12)[:40]},
		{"jpeg without exif", testutil.PlainJPEG()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, ok := Extract(tt.payload)
				assert.False(t, ok)
			})
		})
	}
}
