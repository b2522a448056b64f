package service

import (
	"errors"
	"fmt"

	"github.com/martijn/jobboard/internal/core/repository"
)

var (
	ErrUsernameTaken        = errors.New("username already taken")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrInvalidOrExpiredLink = errors.New("invalid or expired link")
	ErrStoreIntegrity       = errors.New("store integrity violation")
)

// ValidationError reports a missing or malformed input field. Its message is
// safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// storeError maps repository failures onto the service taxonomy.
func storeError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, repository.ErrConstraint):
		return fmt.Errorf("%s: %w: %v", op, ErrStoreIntegrity, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
