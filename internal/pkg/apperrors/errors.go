package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service wraps exactly one of these.
var (
	// ErrResourceNotFound means a referenced event, user, organization or code does not exist
	ErrResourceNotFound = errors.New("resource not found")
	// ErrPermissionDenied means the actor lacks verified-student, host or admin status
	ErrPermissionDenied = errors.New("permission denied")
	// ErrValidationFailed means the input was rejected before touching the store
	ErrValidationFailed = errors.New("validation failed")
	// ErrUpstream means the data store or a third-party provider failed
	ErrUpstream = errors.New("upstream failure")
	// ErrConflict means the request clashes with existing state
	ErrConflict = errors.New("conflict")
)

// Authentication errors
var (
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewResourceNotFoundError creates a not-found error with a message
func NewResourceNotFoundError(message string) *CustomError {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewForbiddenError creates a permission error with a message
func NewForbiddenError(message string) *CustomError {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewValidationError creates a validation error with a message
func NewValidationError(message string) *CustomError {
	return &CustomError{Err: ErrValidationFailed, Message: message}
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) *CustomError {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewUpstreamError wraps a store or provider failure. The cause stays reachable
// through errors.Is / errors.As.
func NewUpstreamError(cause error, message string) error {
	return fmt.Errorf("%w: %w", &CustomError{Err: ErrUpstream, Message: message}, cause)
}

// Kind returns the sentinel kind wrapped by err, or nil for unknown errors
func Kind(err error) error {
	for _, kind := range []error{ErrResourceNotFound, ErrPermissionDenied, ErrValidationFailed, ErrConflict, ErrUpstream} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Message returns the human-readable message of the outermost CustomError in err
func Message(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return err.Error()
}
