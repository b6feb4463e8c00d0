package docstore

import (
	"errors"
	"fmt"
)

// WriteReason classifies a failed document write.
type WriteReason string

const (
	ReasonTransport  WriteReason = "transport"
	ReasonPermission WriteReason = "permission"
	ReasonQuota      WriteReason = "quota"
	ReasonDuplicate  WriteReason = "duplicate"
	ReasonEncode     WriteReason = "encode"
)

// WriteError is returned by Writer.Write.
type WriteError struct {
	ID     string
	Reason WriteReason
	Err    error
}

func (e *WriteError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("write post %s: %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("write post %s: %s: %v", e.ID, e.Reason, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsWriteError reports whether err is or wraps a *WriteError.
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}

// ErrStreamEnded is delivered when a backend change stream stops without
// reporting a cause.
var ErrStreamEnded = errors.New("docstore: change stream ended")
