package apperr

import (
	"errors"
	"net/http"
)

// Error is an application error carrying the HTTP status it maps to.
// Handlers translate anything that is not an *Error into a generic 500.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(status int, msg string) *Error { return &Error{Status: status, Message: msg} }

func Validation(msg string) *Error   { return New(http.StatusBadRequest, msg) }
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(http.StatusForbidden, msg) }
func NotFound(msg string) *Error     { return New(http.StatusNotFound, msg) }
func Internal(msg string) *Error     { return New(http.StatusInternalServerError, msg) }

// From extracts an *Error, or nil if err is not one.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	if ae := From(err); ae != nil {
		return ae.Status
	}
	return http.StatusInternalServerError
}
