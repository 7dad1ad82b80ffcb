// Package errors defines the error taxonomy shared by all pipeline
// stages: schema errors abort a pipeline before any row is processed,
// collision errors report duplicate generated column names, and
// source-unavailable errors distinguish collaborator failures from
// bad configuration.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an error into one of the pipeline categories.
type ErrorType string

const (
	// ErrTypeSchema covers references to absent columns, kind
	// mismatches, and failed key-derivation preconditions.
	ErrTypeSchema ErrorType = "SCHEMA"
	// ErrTypeCollision covers duplicate generated column names
	// produced by a reshape.
	ErrTypeCollision ErrorType = "COLLISION"
	// ErrTypeSourceUnavailable covers loader and geometry-source
	// failures: network errors, timeouts, non-success statuses.
	ErrTypeSourceUnavailable ErrorType = "SOURCE_UNAVAILABLE"
	// ErrTypeParsing covers malformed input the loader cannot type.
	ErrTypeParsing ErrorType = "PARSING"
	// ErrTypeConfig covers invalid application configuration.
	ErrTypeConfig ErrorType = "CONFIG"
	// ErrTypeValidation covers invalid chart specs and stage options.
	ErrTypeValidation ErrorType = "VALIDATION"
)

// AppError is the error value carried through the pipelines. It keeps
// the category, a message, the wrapped cause, and free-form context.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches two AppErrors by type so callers can test categories with
// sentinel values, e.g. errors.Is(err, errors.NewSchemaError("", nil)).
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Type == other.Type
}

// WithContext attaches a key/value pair to the error for logging.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewSchemaError creates a schema error.
func NewSchemaError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSchema, message, cause)
}

// NewCollisionError creates a column-name collision error.
func NewCollisionError(message string) *AppError {
	return NewAppError(ErrTypeCollision, message, nil)
}

// NewSourceUnavailableError creates a collaborator-failure error.
func NewSourceUnavailableError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSourceUnavailable, message, cause)
}

// NewParsingError creates a parsing error.
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewConfigError creates a configuration error.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewValidationError creates a validation error.
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// IsType reports whether err (or anything it wraps) is an AppError of
// the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Type == errType
}
