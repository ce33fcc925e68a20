// Package apierr defines the typed errors returned by handlers, policies
// and services. Every error carries a Kind and the HTTP status it maps to;
// the terminal JSON handler in package respond turns them into responses.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for logging and metrics.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindLimitExceeded Kind = "limit_exceeded"
	KindAuthorization Kind = "authorization"
	KindStateConflict Kind = "state_conflict"
	KindNotFound      Kind = "not_found"
	KindUpstream      Kind = "upstream_failure"
	KindInternal      Kind = "internal"
)

// Error is a typed domain error with HTTP awareness.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Data    any // optional payload, e.g. the failing field
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FieldError is the Data payload of a validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validation reports malformed or missing input. field may be empty.
func Validation(message, field string) *Error {
	e := &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
	if field != "" {
		e.Data = FieldError{Field: field, Message: message}
	}
	return e
}

// ValidationFailed reports a schema failure on one field, using the
// generic "Validation failed" message with the field detail as data.
func ValidationFailed(field, detail string) *Error {
	return &Error{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Message: "Validation failed",
		Data:    FieldError{Field: field, Message: detail},
	}
}

// LimitExceeded reports a counted or sized limit violation.
func LimitExceeded(message string) *Error {
	return &Error{Kind: KindLimitExceeded, Status: http.StatusBadRequest, Message: message}
}

// Unauthenticated reports a request without a usable session.
func Unauthenticated() *Error {
	return &Error{Kind: KindAuthorization, Status: http.StatusUnauthorized, Message: "Authentication required"}
}

// Forbidden reports a role or ownership mismatch.
func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthorization, Status: http.StatusForbidden, Message: message}
}

// InvalidInterests reports an interest-membership violation. It is an
// authorization-shaped failure surfaced as 400.
func InvalidInterests(message string) *Error {
	return &Error{Kind: KindAuthorization, Status: http.StatusBadRequest, Message: message}
}

// StateConflict reports a lifecycle transition from the wrong state.
func StateConflict(message string) *Error {
	return &Error{Kind: KindStateConflict, Status: http.StatusBadRequest, Message: message}
}

// NotFound reports an id that does not resolve.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

// Upstream wraps a storage or transcoder failure.
func Upstream(status int, message string, err error) *Error {
	if status == 0 {
		status = http.StatusBadGateway
	}
	return &Error{Kind: KindUpstream, Status: status, Message: message, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "Internal server error", Err: err}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}
