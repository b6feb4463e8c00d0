// Package location tracks the device's latest known position.
//
// A Tracker is fed by whatever produces fixes (a GPS daemon, the UI shell,
// a CLI flag) and read by the publish pipeline as its fallback when a photo
// carries no geotag. Fixes are withheld once permission is Denied or
// Restricted; before the user decides (NotDetermined) they are reported.
package location

import (
	"context"

	"github.com/roach88/spearfished/internal/geo"
	"github.com/roach88/spearfished/internal/watch"
)

// Permission is the user's location authorization.
type Permission int

const (
	PermissionNotDetermined Permission = iota
	PermissionDenied
	PermissionAuthorized
	PermissionRestricted
)

func (p Permission) String() string {
	switch p {
	case PermissionNotDetermined:
		return "not_determined"
	case PermissionDenied:
		return "denied"
	case PermissionAuthorized:
		return "authorized"
	case PermissionRestricted:
		return "restricted"
	default:
		return "unknown"
	}
}

// Source provides the latest usable device coordinate.
type Source interface {
	// Latest returns the most recent fix, or false if none is available
	// (no fix yet, or permission denied or restricted).
	Latest() (geo.Coordinate, bool)
}

// Status is the tracker state pushed to watchers.
type Status struct {
	Permission Permission
	Coordinate geo.Coordinate
	HasFix     bool
}

// Usable reports whether Status carries a coordinate callers may use.
func (s Status) Usable() bool {
	return s.HasFix && s.Permission != PermissionDenied && s.Permission != PermissionRestricted
}

// Tracker holds the latest fix and permission state.
//
// Thread-safety: All methods are safe for concurrent use.
type Tracker struct {
	state *watch.Value[Status]
}

// NewTracker creates a tracker with no fix and an undetermined permission.
func NewTracker() *Tracker {
	return &Tracker{state: watch.New(Status{Permission: PermissionNotDetermined})}
}

// Update records a new fix. Invalid coordinates are ignored; Update
// reports whether the fix was accepted.
func (t *Tracker) Update(c geo.Coordinate) bool {
	if !geo.IsValid(c) {
		return false
	}
	t.state.Update(func(s Status) Status {
		s.Coordinate = c
		s.HasFix = true
		return s
	})
	return true
}

// SetPermission records a permission change. Denied or restricted
// permission hides the fix from Latest without forgetting it.
func (t *Tracker) SetPermission(p Permission) {
	t.state.Update(func(s Status) Status {
		s.Permission = p
		return s
	})
}

// Permission returns the current permission.
func (t *Tracker) Permission() Permission {
	return t.state.Get().Permission
}

// Status returns the current tracker state.
func (t *Tracker) Status() Status {
	return t.state.Get()
}

// Latest returns the last fix if permission allows it.
func (t *Tracker) Latest() (geo.Coordinate, bool) {
	s := t.state.Get()
	if !s.Usable() {
		return geo.Coordinate{}, false
	}
	return s.Coordinate, true
}

// Watch streams the current status and every change until ctx is done.
func (t *Tracker) Watch(ctx context.Context) <-chan Status {
	return t.state.Subscribe(ctx)
}

// Fixed is a Source that always reports one coordinate.
type Fixed geo.Coordinate

// Latest returns the coordinate if it is valid.
func (f Fixed) Latest() (geo.Coordinate, bool) {
	c := geo.Coordinate(f)
	return c, geo.IsValid(c)
}
