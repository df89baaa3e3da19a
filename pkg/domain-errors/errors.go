// Package domainerrors provides coded errors shared by all modules.
//
// Services construct these; the HTTP layer maps codes to status codes in
// pkg/platform/httputil. Stores do not use this package directly - they return
// sentinel errors (pkg/platform/sentinel) which services translate.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping and branching.
type Code string

const (
	// CodeNotFound means a referenced entity does not exist.
	CodeNotFound Code = "not_found"
	// CodeInvalidState means the operation is not permitted from the entity's
	// current state, or a business rule was violated (insufficient stock,
	// accepted quantity exceeding the order, disallowed category).
	CodeInvalidState Code = "invalid_state"
	// CodeConflict means a duplicate creation attempt.
	CodeConflict Code = "conflict"
	// CodeBadRequest means the input itself is malformed.
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized means missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal is everything unexpected; details are not exposed to callers.
	CodeInternal Code = "internal"
)

// Error carries a code, a caller-facing message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports equality by code and message so tests can use errors.Is against
// a freshly constructed expectation.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New builds a coded error with a caller-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted caller-facing message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As chains.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// unclassified failures.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
