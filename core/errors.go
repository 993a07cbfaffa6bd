package core

import "github.com/pkg/errors"

var (
	// ErrNotFound is wrapped by every "unknown id" error of the domain packages.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the user is authenticated but not allowed to act.
	ErrForbidden = errors.New("permission denied")
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

func (err ValidationError) Unwrap() error { return err.Err }
