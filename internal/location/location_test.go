package location

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spearfished/internal/geo"
)

var keyLargo = geo.Coordinate{Latitude: 25.0865, Longitude: -80.4473}

func TestTracker_NoFix(t *testing.T) {
	tr := NewTracker()
	_, ok := tr.Latest()
	assert.False(t, ok)
	assert.Equal(t, PermissionNotDetermined, tr.Permission())
}

func TestTracker_UpdateIgnoresInvalid(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.Update(geo.Coordinate{Latitude: math.NaN(), Longitude: 0}))
	assert.False(t, tr.Update(geo.Coordinate{Latitude: 0, Longitude: 181}))
	_, ok := tr.Latest()
	assert.False(t, ok)

	assert.True(t, tr.Update(keyLargo))
	got, ok := tr.Latest()
	require.True(t, ok)
	assert.Equal(t, keyLargo, got)
}

func TestTracker_PermissionGatesFix(t *testing.T) {
	tests := []struct {
		perm Permission
		want bool
	}{
		{PermissionNotDetermined, true},
		{PermissionAuthorized, true},
		{PermissionDenied, false},
		{PermissionRestricted, false},
	}

	for _, tt := range tests {
		t.Run(tt.perm.String(), func(t *testing.T) {
			tr := NewTracker()
			tr.Update(keyLargo)
			tr.SetPermission(tt.perm)

			_, ok := tr.Latest()
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestStatus_Usable(t *testing.T) {
	assert.True(t, Status{Permission: PermissionNotDetermined, HasFix: true}.Usable())
	assert.True(t, Status{Permission: PermissionAuthorized, HasFix: true}.Usable())
	assert.False(t, Status{Permission: PermissionAuthorized}.Usable())
	assert.False(t, Status{Permission: PermissionDenied, HasFix: true}.Usable())
	assert.False(t, Status{Permission: PermissionRestricted, HasFix: true}.Usable())
}

func TestTracker_ReauthorizeRestoresFix(t *testing.T) {
	tr := NewTracker()
	tr.Update(keyLargo)
	tr.SetPermission(PermissionDenied)
	tr.SetPermission(PermissionAuthorized)

	got, ok := tr.Latest()
	require.True(t, ok)
	assert.Equal(t, keyLargo, got)
}

func TestTracker_Watch(t *testing.T) {
	tr := NewTracker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := tr.Watch(ctx)
	first := <-ch
	assert.False(t, first.HasFix)

	tr.SetPermission(PermissionAuthorized)
	tr.Update(keyLargo)

	deadline := time.After(time.Second)
	for {
		select {
		case s := <-ch:
			if s.HasFix {
				assert.Equal(t, PermissionAuthorized, s.Permission)
				assert.Equal(t, keyLargo, s.Coordinate)
				assert.True(t, s.Usable())
				return
			}
		case <-deadline:
			t.Fatal("no fix delivered")
		}
	}
}

func TestFixed(t *testing.T) {
	c, ok := Fixed(keyLargo).Latest()
	assert.True(t, ok)
	assert.Equal(t, keyLargo, c)

	_, ok = Fixed(geo.Coordinate{Latitude: 99}).Latest()
	assert.False(t, ok)
}

func TestPermission_String(t *testing.T) {
	assert.Equal(t, "unknown", Permission(42).String())
}
