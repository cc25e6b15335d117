package domain

import (
	"errors"
	"fmt"
)

// Repository contract errors.
var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("duplicate email")
)

// Directory errors surfaced to callers.
var (
	ErrValidation            = errors.New("validation failed")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrAccountNotFound       = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid password")
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)

// Session token errors. Each specific failure wraps ErrTokenInvalid.
var (
	ErrTokenInvalid          = errors.New("invalid token")
	ErrTokenMalformed        = fmt.Errorf("%w: malformed", ErrTokenInvalid)
	ErrTokenExpired          = fmt.Errorf("%w: expired", ErrTokenInvalid)
	ErrTokenInvalidSignature = fmt.Errorf("%w: signature mismatch", ErrTokenInvalid)
)

// ValidationError reports the first rule an input violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is makes errors.Is(err, ErrValidation) hold for any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
