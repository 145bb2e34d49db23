package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Failure kinds. Adapters map them to transport status codes; match them
// with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("forbidden")
	ErrUnavailable     = errors.New("unavailable")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Error is a failure of one Kind. Subject is what failed: an entity for
// ErrNotFound and ErrConflict, an operation for ErrForbidden and
// ErrUnauthenticated, a service name for ErrUnavailable.
type Error struct {
	Kind    error
	Subject string
	ID      string
	Reason  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrNotFound:
		if e.ID != "" {
			return fmt.Sprintf("%s with id %q not found", e.Subject, e.ID)
		}

		return e.Subject + " not found"
	case ErrConflict:
		return fmt.Sprintf("%s conflict: %s", e.Subject, e.Reason)
	case ErrForbidden:
		return withReason(fmt.Sprintf("operation %q forbidden", e.Subject), e.Reason)
	case ErrUnavailable:
		return withReason(fmt.Sprintf("service %q unavailable", e.Subject), e.Reason)
	case ErrUnauthenticated:
		if e.Subject != "" {
			return "sign in required to " + e.Subject
		}

		return "sign in required"
	}

	return withReason(e.Kind.Error(), e.Reason)
}

func (e *Error) Unwrap() error { return e.Kind }

func withReason(msg, reason string) string {
	if reason == "" {
		return msg
	}

	return msg + ": " + reason
}

func NewNotFoundError(entity, id string) error {
	return &Error{Kind: ErrNotFound, Subject: entity, ID: id}
}

func NewConflictError(entity, reason string) error {
	return &Error{Kind: ErrConflict, Subject: entity, Reason: reason}
}

func NewForbiddenError(operation, reason string) error {
	return &Error{Kind: ErrForbidden, Subject: operation, Reason: reason}
}

func NewUnavailableError(service, reason string) error {
	return &Error{Kind: ErrUnavailable, Subject: service, Reason: reason}
}

// NewUnauthenticatedError reports that operation needs a signed-in viewer.
func NewUnauthenticatedError(operation string) error {
	return &Error{Kind: ErrUnauthenticated, Subject: operation}
}

// ValidationError is one invalid input. Field is empty when the whole
// request is rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// FieldErrors reports several invalid form fields at once, keyed by field
// name. It matches ErrValidation.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}

	slices.Sort(fields)

	return "validation failed for " + strings.Join(fields, ", ")
}

func (e FieldErrors) Unwrap() error { return ErrValidation }

// OrNil returns nil when no field failed.
func (e FieldErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}

	return e
}

func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool        { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool      { return errors.Is(err, ErrValidation) }
func IsForbidden(err error) bool       { return errors.Is(err, ErrForbidden) }
func IsUnavailable(err error) bool     { return errors.Is(err, ErrUnavailable) }
func IsUnauthenticated(err error) bool { return errors.Is(err, ErrUnauthenticated) }
