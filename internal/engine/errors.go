package engine

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced document or record does not
// exist within the caller's organization.
var ErrNotFound = errors.New("not found")

// ValidationError reports a rejected movement request. No writes happen
// before validation passes, so a ValidationError always means nothing
// changed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
