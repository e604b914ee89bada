// Package apperror defines the error taxonomy shared by the storage and
// query-building layers. Errors carry an explicit kind tag instead of relying
// on concrete type identity, so callers can branch with errors.As and map the
// kind to an HTTP status at the transport boundary.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind enumerates the error categories the backend distinguishes.
type Kind int

const (
	// KindInternal covers unexpected failures, including errors passed
	// through opaquely from the execution layer.
	KindInternal Kind = iota

	// KindBadRequest marks structurally invalid caller-supplied data:
	// empty update payloads, disallowed or repeated filter keys,
	// inverted min/max ranges.
	KindBadRequest

	// KindUnauthorized marks missing or invalid credentials.
	KindUnauthorized

	// KindForbidden marks insufficient privileges for a valid identity.
	KindForbidden

	// KindNotFound marks a lookup that matched no row.
	KindNotFound

	// KindConflict marks a uniqueness violation surfaced by the store.
	KindConflict
)

// String returns the canonical name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus returns the HTTP status the kind maps to at the transport layer.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a kind-tagged error with a human-readable message.
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New creates an error with the given kind and message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// BadRequest creates a KindBadRequest error.
func BadRequest(format string, args ...any) *Error {
	return New(KindBadRequest, format, args...)
}

// Unauthorized creates a KindUnauthorized error.
func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, format, args...)
}

// Forbidden creates a KindForbidden error.
func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, format, args...)
}

// NotFound creates a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// Conflict creates a KindConflict error.
func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

// Internal creates a KindInternal error.
func Internal(format string, args ...any) *Error {
	return New(KindInternal, format, args...)
}

// WithCause attaches an underlying error for unwrapping. It returns the
// receiver for chaining.
func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Kind returns the error's kind tag.
func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

// Message returns the human-readable message verbatim. Validation messages
// are part of the client-facing contract and must not be rewrapped.
func (e *Error) Message() string {
	return e.message
}

// HTTPStatus returns the HTTP status for the error's kind.
func (e *Error) HTTPStatus() int {
	return e.Kind().HTTPStatus()
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf extracts the kind from err. Errors without a tag report KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind() == kind
}

// IsBadRequest reports whether err is a KindBadRequest error.
func IsBadRequest(err error) bool {
	return IsKind(err, KindBadRequest)
}

// IsNotFound reports whether err is a KindNotFound error.
func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

// IsConflict reports whether err is a KindConflict error.
func IsConflict(err error) bool {
	return IsKind(err, KindConflict)
}
