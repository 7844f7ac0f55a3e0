package store

import (
	"context"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrConflict reports an optimistic-concurrency mismatch on a score row.
	ErrConflict = errors.New("score row was changed concurrently")
	// ErrLocked reports a write to a finalized or archived score row.
	ErrLocked = errors.New("score row is finalized")
)

// Error annotates a store failure with the operation that produced it.
type Error struct {
	Op        string
	Err       error
	conflict  bool
	transient bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsConflict reports whether the error is a version or uniqueness conflict.
func (e *Error) IsConflict() bool {
	return e != nil && e.conflict
}

// IsTransient reports whether retrying the operation may succeed.
func (e *Error) IsTransient() bool {
	return e != nil && e.transient
}

// IsTransient reports whether err is a store error worth retrying.
func IsTransient(err error) bool {
	var storeErr *Error
	return errors.As(err, &storeErr) && storeErr.IsTransient()
}

// IsConflict reports whether err is a store conflict.
func IsConflict(err error) bool {
	if errors.Is(err, ErrConflict) {
		return true
	}
	var storeErr *Error
	return errors.As(err, &storeErr) && storeErr.IsConflict()
}

// wrapError classifies err and tags it with op. Context errors are wrapped
// too and still match errors.Is.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Err: err}
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		if storeErr.Op == "" {
			storeErr.Op = op
		}
		return storeErr
	}

	e := &Error{Op: op, Err: err}
	if errors.Is(err, ErrConflict) {
		e.conflict = true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			e.transient = true
		case sqlite3.SQLITE_CONSTRAINT:
			e.conflict = true
		}
	}
	return e
}
