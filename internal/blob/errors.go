package blob

import (
	"errors"
	"fmt"
)

var errEmptyURL = errors.New("store returned an empty URL")

// ErrNotFound is returned by a Store when no object exists at a key.
var ErrNotFound = errors.New("blob: object not found")

// StorageWriteError means the object could not be written.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("storage write %s: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// StorageURLResolutionError means the object was written but its URL could
// not be resolved. The object at Key is left in place.
type StorageURLResolutionError struct {
	Key string
	Err error
}

func (e *StorageURLResolutionError) Error() string {
	return fmt.Sprintf("storage url %s: %v", e.Key, e.Err)
}

func (e *StorageURLResolutionError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is either storage error type.
func IsStorageError(err error) bool {
	var we *StorageWriteError
	var ue *StorageURLResolutionError
	return errors.As(err, &we) || errors.As(err, &ue)
}
