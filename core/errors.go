package core

import (
	"net/http"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// StatusError is a domain error that maps onto a fixed HTTP status.
// Domain packages declare them as sentinels and compare with errors.Cause.
type StatusError struct {
	Code    int
	Message string
}

func (err StatusError) Error() string {
	return err.Message
}

// NewNotFoundError returns a 404 StatusError for the named resource.
func NewNotFoundError(resource string) error {
	return &StatusError{Code: http.StatusNotFound, Message: resource + " not found"}
}

func NewConflictError(msg string) error {
	return &StatusError{Code: http.StatusConflict, Message: msg}
}

func NewBadRequestError(msg string) error {
	return &StatusError{Code: http.StatusBadRequest, Message: msg}
}

func NewUnauthorizedError(msg string) error {
	return &StatusError{Code: http.StatusUnauthorized, Message: msg}
}

// IsNotFound reports whether err (or its cause) is a 404 StatusError.
func IsNotFound(err error) bool {
	serr, ok := errors.Cause(err).(*StatusError)
	return ok && serr.Code == http.StatusNotFound
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
