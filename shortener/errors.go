package shortener

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both unknown and expired codes; callers surface it as
// absence, never as a server error.
var ErrNotFound = errors.New("short link not found")

// ValidationError reports malformed input. Its message is specific enough
// to hand back to the caller as-is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StorageError wraps a failed store call. It is the only fatal error class
// on the write path.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
