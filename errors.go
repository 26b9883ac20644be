package tabletalk

import (
	"errors"
	"fmt"
)

// Sentinel errors for query failures.
var (
	// ErrDatasetUnavailable indicates the comparison could not be fetched
	// or the source returned an empty table. No reasoning is attempted.
	ErrDatasetUnavailable = errors.New("tabletalk: comparison dataset unavailable")

	// ErrUnsupportedVariant indicates an unknown agent variant was
	// requested. The request fails before any external call is made.
	ErrUnsupportedVariant = errors.New("tabletalk: unsupported agent variant")

	// ErrExecutionTimeout indicates a bounded session exceeded its
	// execution budget. Terminal; there is no partial answer.
	ErrExecutionTimeout = errors.New("tabletalk: execution budget exceeded")

	// ErrChannelClosed indicates a push channel's peer is gone or its
	// send buffer overflowed. Non-fatal to the query.
	ErrChannelClosed = errors.New("tabletalk: push channel closed")

	// ErrChannelNotFound indicates no push channel is registered under
	// the given id.
	ErrChannelNotFound = errors.New("tabletalk: push channel not found")
)

// ReasoningError wraps a backend error, malformed backend output, or a
// parsing failure that occurred during a reasoning session. Sessions are
// never retried; the error is terminal for the query.
type ReasoningError struct {
	Msg   string
	Cause error
}

// Error returns the error message.
func (e *ReasoningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tabletalk: reasoning failed: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("tabletalk: reasoning failed: %s", e.Msg)
}

// Unwrap returns the underlying error.
func (e *ReasoningError) Unwrap() error {
	return e.Cause
}

// NewReasoningError creates a ReasoningError wrapping cause.
func NewReasoningError(msg string, cause error) *ReasoningError {
	return &ReasoningError{Msg: msg, Cause: cause}
}

// IsReasoningFailure returns true if the error or any wrapped error is a
// ReasoningError.
func IsReasoningFailure(err error) bool {
	var re *ReasoningError
	return errors.As(err, &re)
}
