package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig       = "CONFIG"
	ErrTransport    = "TRANSPORT"
	ErrSchema       = "SCHEMA"
	ErrStale        = "STALE"
	ErrDuplicate    = "DUPLICATE"
	ErrChat         = "CHAT"
	ErrExec         = "EXEC"
	ErrTotalFailure = "TOTAL_FAILURE"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrTransport code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrTransport,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Schemaf builds a SCHEMA error for a payload that does not match its expected shape.
func Schemaf(format string, args ...interface{}) *Error {
	return &Error{
		Code:    ErrSchema,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Short returns the message and cause on a single line, for places like
// widget cards where the multi-line form doesn't fit.
func (e *Error) Short() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var slErr *Error
	if errors.As(err, &slErr) {
		return slErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first structured Error in the chain, or "".
func CodeOf(err error) string {
	var slErr *Error
	if errors.As(err, &slErr) {
		return slErr.Code
	}
	return ""
}

// As is errors.As, re-exported so callers importing this package as "errors"
// keep access to it.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
