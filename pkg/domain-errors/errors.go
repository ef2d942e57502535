// Package domainerrors provides coded errors for the service boundary.
//
// Services return these so transports can map outcomes to protocol statuses
// without string matching. Stores return sentinel errors (pkg/platform/sentinel)
// and services translate them into coded errors at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping and for callers that branch
// on outcome.
type Code string

const (
	// Generic codes shared by every slice.
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"

	// Lifecycle codes for the stamp slice.
	CodeInvalidStatus  Code = "invalid_status"
	CodeInvalidPayment Code = "invalid_payment"
	CodeExhausted      Code = "exhausted"
	CodeAccessDenied   Code = "access_denied"
)

// Error carries a code, a caller-safe message, and an optional cause.
type Error struct {
	code    Code
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the classification of this error.
func (e *Error) Code() Code {
	return e.code
}

// Message returns the caller-safe description without the code prefix.
func (e *Error) Message() string {
	return e.message
}

// New creates a coded error with a caller-safe message.
func New(code Code, message string) error {
	return &Error{code: code, message: message}
}

// Newf creates a coded error with a formatted caller-safe message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause is
// preserved for errors.Is/As but never shown to external callers.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// CodeOf returns the outermost code carried by err, or CodeInternal when err
// carries none. Nil maps to the empty code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternal
}

// Is delegates to errors.Is so call sites can keep a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
