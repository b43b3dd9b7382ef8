// Package errors provides structured error types for graphedit.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the editing core
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or configuration validation failures
//   - NOT_FOUND: Unknown entity or file
//   - *_FAILED: A collaborator (router, layout engine) produced no result
//   - INVARIANT: A broken internal invariant; never recovered
//
// # Invariant violations
//
// Programmer errors such as snapshotting an entity kind that has no restore
// form, or unlinking a sentinel corner, are reported with [Invariant], which
// panics with an *Error carrying [ErrCodeInvariant]. Editing cannot safely
// continue past such a failure.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "unknown entity %q", id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle lookup failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRoutingFailed, origErr, "route edge %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidID     Code = "INVALID_ID"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Collaborator failures
	ErrCodeRoutingFailed Code = "ROUTING_FAILED"
	ErrCodeLayoutFailed  Code = "LAYOUT_FAILED"

	// Internal errors
	ErrCodeInvariant   Code = "INVARIANT"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Invariant panics with an ErrCodeInvariant error. It never returns.
func Invariant(format string, args ...any) {
	panic(New(ErrCodeInvariant, format, args...))
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// FromPanic converts a recovered panic value into an error. Invariant
// panics keep their *Error; anything else is wrapped as ErrCodeInternal.
func FromPanic(v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case *Error:
		return x
	case error:
		return Wrap(ErrCodeInternal, x, "panic")
	default:
		return New(ErrCodeInternal, "panic: %v", x)
	}
}
