package registry

import (
	"errors"
	"fmt"
)

// ErrConcurrentModification is reported when the backing store detects a lock
// or deadlock while updating a collection. Callers may retry the whole operation.
var ErrConcurrentModification = errors.New("concurrent modification")

// ErrPageOutOfRange is reported when a children window starts past the last child.
var ErrPageOutOfRange = errors.New("page start beyond available children")

var (
	ErrNotFound   = errors.New("resource not found")
	ErrExists     = errors.New("resource already exists")
	ErrForbidden  = errors.New("access denied")
	ErrCrossMount = errors.New("operation spans mounted stores")
)

// PersistenceError wraps a backing-store failure with the operation and path involved.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistenceError builds a PersistenceError. A nil err yields nil.
func NewPersistenceError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Path: path, Err: err}
}

// IsRetryable reports whether err is a concurrent-modification failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
