// File: /utils/errors.go
package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError is returned for malformed input (bad coordinates, negative amounts,
// missing required fields).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ForbiddenError is returned when the caller does not own the resource.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// NotFoundError is returned when a trip, motorcycle or record does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvalidStateError is returned for illegal lifecycle transitions.
type InvalidStateError struct {
	From   string
	Action string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a trip in status %s", e.Action, e.From)
}

// PersistenceError wraps a failure of the underlying store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func NewForbiddenError(message string) error {
	return &ForbiddenError{Message: message}
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func NewInvalidStateError(from, action string) error {
	return &InvalidStateError{From: from, Action: action}
}

// Persistence wraps err as a PersistenceError unless it already carries one of the
// domain error types, which are passed through untouched.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsDomainError reports whether err is one of the typed errors above.
func IsDomainError(err error) bool {
	var (
		ve *ValidationError
		fe *ForbiddenError
		ne *NotFoundError
		se *InvalidStateError
		pe *PersistenceError
	)
	return errors.As(err, &ve) || errors.As(err, &fe) || errors.As(err, &ne) ||
		errors.As(err, &se) || errors.As(err, &pe)
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	var (
		ve *ValidationError
		fe *ForbiddenError
		ne *NotFoundError
		se *InvalidStateError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &fe):
		return http.StatusForbidden
	case errors.As(err, &ne):
		return http.StatusNotFound
	case errors.As(err, &se):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
