package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUsername is returned when a username is already taken
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrDuplicateEmail is returned when an email is already registered
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrInvalidCredentials is returned when the password does not match
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrCannotFollowSelf = errors.New("cannot follow yourself")

	// ErrTooManyAttempts is returned while login is throttled for a username
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	// ErrStorageUnavailable wraps connection-level storage failures
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrValidation matches any *ValidationError via errors.Is
	ErrValidation = errors.New("validation failed")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every rejected field of one request.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	f := e.Fields[0]
	if len(e.Fields) == 1 {
		return fmt.Sprintf("%s: %s %s", ErrValidation, f.Field, f.Message)
	}
	return fmt.Sprintf("%s: %s %s (and %d more)", ErrValidation, f.Field, f.Message, len(e.Fields)-1)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
