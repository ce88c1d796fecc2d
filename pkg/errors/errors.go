package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an AppError so transport adapters can decide how to
// render it. Validation, NotFound and Conflict are domain failures and
// are written as HTTP-200 soft failures; Authentication and Internal
// surface as real transport statuses.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuthentication
)

// AppError is the structured error exchanged between services and
// transport adapters.
type AppError struct {
	Kind     Kind
	Message  string
	Internal error
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrUnauthorized = &AppError{
		Kind:    KindAuthentication,
		Message: "A token is required for authentication",
	}
	ErrInvalidToken = &AppError{
		Kind:    KindAuthentication,
		Message: "Invalid token",
	}
	ErrInternalServer = &AppError{
		Kind:    KindInternal,
		Message: "Internal server error",
	}
)

// NewValidation builds a validation error for missing or malformed input.
func NewValidation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewNotFound builds a not-found error for an absent resource.
func NewNotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// NewConflict builds a conflict error for duplicate catalog entries or grants.
func NewConflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

// Wrap turns any error into an internal AppError while keeping the
// original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Internal: err}
}

// FromError converts a generic error into an AppError, defaulting to
// ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// IsDomain reports whether the error is a domain failure (validation,
// not-found or conflict) that adapters render as a soft failure rather
// than a server error.
func IsDomain(err error) bool {
	appErr := FromError(err)
	if appErr == nil {
		return false
	}
	switch appErr.Kind {
	case KindValidation, KindNotFound, KindConflict:
		return true
	}
	return false
}
