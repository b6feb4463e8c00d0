package publish

import (
	"errors"
	"fmt"
)

// Step names a stage of the publish sequence.
type Step string

const (
	StepValidate Step = "validate"
	StepLocate   Step = "locate"
	StepUpload   Step = "upload"
	StepWrite    Step = "write"
)

// Required request fields, in validation order.
const (
	FieldUsername = "username"
	FieldFishType = "fishType"
	FieldImage    = "image"
)

// ValidationError names the first missing required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %s", e.Field)
}

// LocationUnresolvedError means neither the image nor the device gave a
// usable coordinate.
type LocationUnresolvedError struct {
	// DeviceDenied is set when device location was unavailable because of
	// permissions rather than a missing fix.
	DeviceDenied bool
}

func (e *LocationUnresolvedError) Error() string {
	if e.DeviceDenied {
		return "location unresolved: image has no geotag and device location is not permitted"
	}
	return "location unresolved: image has no geotag and no device location is known"
}

// PublishError is returned for every failed publish.
type PublishError struct {
	Step Step
	Err  error
	// OrphanedBlob is the key of an uploaded image no document refers to.
	OrphanedBlob string
}

func (e *PublishError) Error() string {
	if e.OrphanedBlob != "" {
		return fmt.Sprintf("publish %s (orphaned blob %s): %v", e.Step, e.OrphanedBlob, e.Err)
	}
	return fmt.Sprintf("publish %s: %v", e.Step, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsLocationUnresolved reports whether err wraps a *LocationUnresolvedError.
func IsLocationUnresolved(err error) bool {
	var le *LocationUnresolvedError
	return errors.As(err, &le)
}
