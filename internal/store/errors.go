package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned by SelectOne when no row matches.
	ErrNotFound = errors.New("no rows returned")

	// ErrLockContention matches a commit that gave up because another
	// connection held the database lock for every attempt.
	ErrLockContention = errors.New("database locked by another connection")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store is closed")
)

// QueryError wraps a failure of one generic operation. Malformed predicates,
// unknown tables and type mismatches all surface as a QueryError around the
// driver error.
type QueryError struct {
	Op    string // insert, count, select, select_one, update, delete
	Table string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// LockContentionError is returned by Commit when the retry policy ran out of
// attempts. The transaction is still open; calling Commit again retries it.
type LockContentionError struct {
	Attempts int
	Err      error // last driver error
}

// Error implements the error interface.
func (e *LockContentionError) Error() string {
	return fmt.Sprintf("commit: gave up after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *LockContentionError) Unwrap() error {
	return e.Err
}

// Is reports ErrLockContention as a match.
func (e *LockContentionError) Is(target error) bool {
	return target == ErrLockContention
}

// DecodeError is returned under DecodeStrict when a text value is not valid
// UTF-8.
type DecodeError struct {
	Value []byte
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid UTF-8 in text value %q", e.Value)
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsLockError reports whether err is a transient SQLite lock failure
// (SQLITE_BUSY or SQLITE_LOCKED).
func IsLockError(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	// Errors that lost their type on the way up still carry SQLite's text.
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
