// Package apierror provides the standardized error taxonomy and response
// structures for the API. All errors returned to clients go through this
// package to ensure consistency and to prevent leaking internal details
// (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies a business-rule failure. The kind string is what clients
// see in the "error" field of the response envelope.
type Kind string

const (
	KindNotFound        Kind = "not_found"        // entity id unresolved
	KindInvalidArgument Kind = "invalid_argument" // malformed / out-of-range input
	KindConflict        Kind = "conflict"         // state-machine violation
	KindForbidden       Kind = "forbidden"        // disallowed by business rule
	KindInternal        Kind = "internal"         // unexpected persistence failure
)

// Error is the canonical error value produced by the service layer.
// Details carries machine-readable context (e.g. the outstanding balance
// when a payment exceeds it) so callers can retry with corrected input.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string { return e.Message }

// HTTPStatus maps the error kind to its HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func InvalidArgument(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

func InvalidArgumentWithDetails(msg string, details map[string]interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Message: msg, Details: details}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Internal(msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg}
}

// From extracts the *Error from err, or wraps it as KindInternal with a safe
// generic message so DB errors never reach a client verbatim.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Message: "internal server error"}
}

// Response is the JSON envelope for all 4xx/5xx bodies.
type Response struct {
	ErrorKind string                 `json:"error"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Body builds the response envelope for e.
func (e *Error) Body() Response {
	return Response{ErrorKind: string(e.Kind), Message: e.Message, Details: e.Details}
}

// ValidationError wraps multiple field errors from request binding.
type ValidationError struct {
	ErrorKind string            `json:"error"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{ErrorKind: string(KindInvalidArgument), Message: "validation failed", Fields: fields}
}
