package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is returned by Start on a running synchronizer.
	ErrAlreadyStarted = errors.New("feed: already started")
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("feed: closed")
)

// SubscriptionError is the feed's last error when the store subscription
// fails. Attempt counts consecutive failures since the last good batch.
type SubscriptionError struct {
	Attempt int
	Err     error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("feed subscription (attempt %d): %v", e.Attempt, e.Err)
}

func (e *SubscriptionError) Unwrap() error {
	return e.Err
}

// IsSubscriptionError reports whether err is or wraps a *SubscriptionError.
func IsSubscriptionError(err error) bool {
	var se *SubscriptionError
	return errors.As(err, &se)
}
