package services

import "errors"

// Error kinds. Every error returned by the services either wraps one of
// these or is an internal failure.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
)

var (
	ErrUserAlreadyExists  error = &kindError{msg: "user already exists", kind: ErrConflict}
	ErrInvalidCredentials error = &kindError{msg: "invalid email or password", kind: ErrUnauthorized}
	ErrSessionNotFound    error = &kindError{msg: "session not found", kind: ErrUnauthorized}
	ErrSessionExpired     error = &kindError{msg: "session expired", kind: ErrUnauthorized}
	ErrTaskNotFound       error = &kindError{msg: "task not found", kind: ErrNotFound}
)

// kindError is a specific error that still matches its kind with
// errors.Is.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string {
	return e.msg
}

func (e *kindError) Unwrap() error {
	return e.kind
}

// ValidationError reports the first field that broke its rule.
type ValidationError struct {
	Field   string
	Message string
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
