package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession is returned by Get when no session is stored.
	ErrNoSession = errors.New("no session stored")

	// ErrInvalidSession is returned by Set for a session missing its token or admin id.
	ErrInvalidSession = errors.New("invalid session")

	// ErrCorrupt is returned when persisted data cannot be decoded.
	ErrCorrupt = errors.New("stored session is corrupt")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown session backend")
)

// StoreError describes a failed store operation.
type StoreError struct {
	// Backend is the backend name (file, memory, redis, sqlite)
	Backend string

	// Op is the store operation (set, get, clear, open)
	Op string

	// Err is the underlying error
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Backend == "" {
		return fmt.Sprintf("session %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("session %s (%s): %v", e.Op, e.Backend, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) && se.Backend == "" {
		se.Backend = backend
		return se
	}
	return &StoreError{Backend: backend, Op: op, Err: err}
}
