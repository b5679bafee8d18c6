// Package common defines the sentinel errors and error types shared by the
// storage layer, the services and the console front-end. Callers should use
// errors.Is / errors.As to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrorDuplicateKey = errors.New("duplicate key")

	// Storage failures. Both kinds match ErrorStorage with errors.Is.
	ErrorStorage            = errors.New("storage error")
	ErrorConnectionFailed   = fmt.Errorf("%w: connection failed", ErrorStorage)
	ErrorStorageUnavailable = fmt.Errorf("%w: unavailable", ErrorStorage)

	// Validation errors, usually wrapped in a ValidationError.
	ErrorEmptyField         = errors.New("field must not be empty")
	ErrorInvalidPhoneFormat = errors.New("phone must be exactly 11 digits")
	ErrorPasswordTooShort   = errors.New("password is too short")
	ErrorFieldTooLong       = errors.New("field is too long")

	// Auth errors.
	ErrorInvalidCredentials = errors.New("invalid username or password")

	// Registration errors.
	ErrorDuplicateUsername = errors.New("username already exists")

	// Recovery handshake errors.
	ErrorIdentityMismatch   = errors.New("identity verification failed")
	ErrorSessionNotVerified = errors.New("recovery session is not verified")
)

// ValidationError reports which input field failed a local check.
// Err is one of the validation sentinels above.
type ValidationError struct {
	Field string
	Err   error
}

func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StorageError is returned by repositories when the backing database fails.
// Kind is ErrorConnectionFailed or ErrorStorageUnavailable; Err is the driver error.
type StorageError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
