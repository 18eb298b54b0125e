// Package errors defines the service's coded errors and how they render on the wire.
package errors

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
)

// Public messages are part of the HTTP contract and must not change.
var (
	ErrMalformedRequest = NewError("MALFORMED_REQUEST", "Invalid request body", http.StatusBadRequest)
	ErrValidation       = NewError("VALIDATION_ERROR", "Validation failed", http.StatusBadRequest)
	ErrRateLimited      = NewError("RATE_LIMITED", "Too many requests. Please try again later.", http.StatusTooManyRequests)
	ErrUnauthorized     = NewError("UNAUTHORIZED", "Unauthorized", http.StatusUnauthorized)
	ErrSinkFailure      = NewError("SINK_FAILURE", "sink failed", http.StatusInternalServerError)
	ErrInternal         = NewError("INTERNAL_ERROR", "Internal server error. Please try again later.", http.StatusInternalServerError)
)

// DetailErrors is the only detail key exposed to clients.
const DetailErrors = "errors"

type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]interface{}
	Cause   error
	fatal   bool
}

func NewError(code, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Status:  status,
		Details: map[string]interface{}{},
		fatal:   status < http.StatusInternalServerError,
	}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on Code so that sentinel comparisons survive WithCause/WithDetail copies.
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && e.Code == t.Code
}

// IsFatal reports errors that retrying cannot fix. Client errors are fatal by
// default; server errors become fatal only through AsFatal.
func (e *Error) IsFatal() bool { return e.fatal }

func (e *Error) clone() *Error {
	err := *e
	err.Details = maps.Clone(e.Details)
	if err.Details == nil {
		err.Details = map[string]interface{}{}
	}
	return &err
}

func (e *Error) WithCause(cause error) *Error {
	err := e.clone()
	err.Cause = cause
	return err
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := e.clone()
	err.Details[key] = value
	return err
}

func (e *Error) AsFatal() *Error {
	err := e.clone()
	err.fatal = true
	return err
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func ToHTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// ToErrorResponse renders err as the public JSON error body. Causes and
// internal details never reach the client; only the "errors" detail is exposed.
func ToErrorResponse(err error) map[string]interface{} {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = ErrInternal
	}

	message := appErr.Message
	if appErr.Status >= http.StatusInternalServerError {
		message = ErrInternal.Message
	}

	response := map[string]interface{}{"error": message}
	if fieldErrors, ok := appErr.Details[DetailErrors]; ok {
		response[DetailErrors] = fieldErrors
	}
	return response
}
