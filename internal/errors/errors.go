// Package errors provides coded domain errors shared by the stores, the cover
// pipeline and the HTTP layer.
//
// Usage:
//
//	// In a store
//	if result.RowsAffected == 0 {
//	    return errors.NotFoundf("book %d not found", id)
//	}
//
//	// In a handler
//	if errors.Is(err, errors.ErrNotFound) {
//	    respondNotFound(c, "book")
//	    return
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions so callers need a single import.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code is a machine-readable error code.
type Code string

const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeValidation    Code = "VALIDATION"
	CodeInUse         Code = "IN_USE"
	CodeConflict      Code = "CONFLICT"
	CodeUpstream      Code = "UPSTREAM"
	CodeUnavailable   Code = "UNAVAILABLE"
	CodeInternal      Code = "INTERNAL"
)

// HTTPStatus returns the status code a handler should answer with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeConflict:
		return http.StatusConflict
	case CodeValidation, CodeInUse:
		return http.StatusBadRequest
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinels for use with errors.Is.
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInUse         = &Error{Code: CodeInUse, Message: "in use"}
	ErrConflict      = &Error{Code: CodeConflict, Message: "conflict"}
	ErrUpstream      = &Error{Code: CodeUpstream, Message: "upstream error"}
	ErrUnavailable   = &Error{Code: CodeUnavailable, Message: "unavailable"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func AlreadyExists(msg string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: msg}
}

func AlreadyExistsf(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// InUse reports a record that cannot be removed while others reference it.
func InUse(msg string, details any) *Error {
	return &Error{Code: CodeInUse, Message: msg, Details: details}
}

func Upstream(msg string, cause error) *Error {
	return &Error{Code: CodeUpstream, Message: msg, cause: cause}
}

func Unavailable(msg string) *Error {
	return &Error{Code: CodeUnavailable, Message: msg}
}

// Internal wraps an unexpected failure.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// Wrap attaches a message to err, keeping the code when err is already a
// domain error.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return &Error{Code: de.Code, Message: msg, Details: de.Details, cause: err}
	}
	return &Error{Code: CodeInternal, Message: msg, cause: err}
}

// GetCode extracts the code of err, or CodeInternal for foreign errors.
func GetCode(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
