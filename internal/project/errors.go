package project

import "errors"

// Sentinel errors. Callers match with errors.Is.
var (
	ErrNotFound   = errors.New("project not found")
	ErrTransport  = errors.New("transport failure")
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports missing or empty input for a requested action.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func Invalid(message string) error {
	return &ValidationError{Message: message}
}
