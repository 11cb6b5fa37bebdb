package dups

import (
	"errors"
	"fmt"
)

// ErrNoRoots is returned by Run when no root paths are given.
var ErrNoRoots = errors.New("no root paths given")

// TraversalError reports a directory that could not be listed.
// It is never fatal: the subtree is skipped.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("opendir: %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// StatError reports a failed type or identity query for a directory entry.
// It aborts the run.
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("stat: %s: %v", e.Path, e.Err)
}

func (e *StatError) Unwrap() error { return e.Err }

// OpenError reports a file that could not be opened for comparison.
// The file is dropped from its group and the run continues.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open: %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ReadError reports a failed read of a file under comparison.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read: %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// TruncationError reports a file that returned fewer bytes than its declared
// size promised, meaning it changed while being compared.
type TruncationError struct {
	Path string
	// Want is the window length that was requested.
	Want int64
	// Got is the number of bytes actually read.
	Got int
}

func (e *TruncationError) Error() string {
	return fmt.Sprintf("unexpected end of file: %s (read %d of %d bytes)", e.Path, e.Got, e.Want)
}

// IdentityConflictError reports the same physical file reached through two
// different paths within one size class.
type IdentityConflictError struct {
	Identity Identity
	Path     string
	Existing string
}

func (e *IdentityConflictError) Error() string {
	return fmt.Sprintf("same file: %s and %s (%s)", e.Existing, e.Path, e.Identity)
}

// IsFatal reports whether err must abort the run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var (
		traversal *TraversalError
		open      *OpenError
	)

	return !errors.As(err, &traversal) && !errors.As(err, &open)
}
