// Package diffview coordinates streaming diff sessions: opening a diff
// tab for a file, feeding it incremental content, and committing or
// reverting the result.
package diffview

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrSessionNotOpen indicates the session was never opened or was
	// already torn down.
	ErrSessionNotOpen = errors.New("diff session not open")

	// ErrViewClosed indicates the diff view was closed while the
	// session was still streaming.
	ErrViewClosed = errors.New("diff view closed")

	// ErrViewTimeout indicates the diff view did not become visible
	// within the allowed wait.
	ErrViewTimeout = errors.New("timed out waiting for diff view")
)

// OperationError represents an error that occurred during a session
// operation.
type OperationError struct {
	Op      string // Operation name (e.g., "open", "update", "save")
	Target  string // Target of the operation (usually a file path)
	Context string // Additional context
	Err     error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

// WithContext adds context to the error.
// Safe to call on nil receiver - returns nil.
func (e *OperationError) WithContext(ctx string) *OperationError {
	if e == nil {
		return nil
	}
	e.Context = ctx
	return e
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	var msg string
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	} else {
		msg = e.Op
	}

	if e.Context != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Context)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements errors.Is for OperationError.
// Matches both the wrapper itself and the wrapped error.
func (e *OperationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*OperationError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}
