package publisher

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by Publish when no session is live
	ErrNotConnected = errors.New("broker session not connected")
	// ErrTimeout is returned when the broker does not acknowledge in time
	ErrTimeout = errors.New("broker operation timed out")
)

// ConnectError classifies a failed connect attempt
type ConnectError struct {
	Err       error
	Transient bool
}

func (e *ConnectError) Error() string {
	kind := "fatal"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("broker connect (%s): %v", kind, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether a connect failure should be retried
func IsTransient(err error) bool {
	var ce *ConnectError
	if errors.As(err, &ce) {
		return ce.Transient
	}
	return false
}

// IsFatal reports whether a connect failure must stop the driver
func IsFatal(err error) bool {
	return err != nil && !IsTransient(err)
}
