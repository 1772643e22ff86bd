package store

import (
	"errors"
	"fmt"
)

// ErrUnavailable matches every error caused by an unreachable or corrupt store.
var ErrUnavailable = errors.New("store unavailable")

// UnavailableError wraps a driver failure with the operation that hit it.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrUnavailable, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is reports ErrUnavailable as a match.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func unavailable(op string, err error) error {
	return &UnavailableError{Op: op, Err: err}
}
