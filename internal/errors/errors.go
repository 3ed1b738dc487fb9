// FilePath: internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Error types
	ErrorTypeNone       ErrorType = ""
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeConnection ErrorType = "connection"
	ErrorTypeQuery      ErrorType = "query"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// StatusCode maps an error type to the HTTP status the API answers with.
func (t ErrorType) StatusCode() int {
	switch t {
	case ErrorTypeNone:
		return http.StatusOK
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// APIError represents a structured API error
type APIError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Details   any       `json:"details,omitempty"`
	err       error     // Internal error for logging
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the internal error to errors.Is / errors.As
func (e *APIError) Unwrap() error {
	return e.err
}

// Cause returns the message of the internal error, or the error message when there is none
func (e *APIError) Cause() string {
	if e.err != nil {
		return e.err.Error()
	}
	return e.Message
}

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithDetails adds additional details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

func newError(t ErrorType, msg string, err error) *APIError {
	return &APIError{
		Type:    t,
		Message: msg,
		Code:    t.StatusCode(),
		err:     err,
	}
}

// New creates an error of the given type
func New(t ErrorType, msg string, err error) *APIError {
	return newError(t, msg, err)
}

// NewValidationError creates a new validation error
func NewValidationError(msg string, err error) *APIError {
	return newError(ErrorTypeValidation, msg, err)
}

// NewConnectionError creates an error for a database or tunnel that could not be reached
func NewConnectionError(msg string, err error) *APIError {
	return newError(ErrorTypeConnection, msg, err)
}

// NewQueryError creates an error for a failed insert or select
func NewQueryError(msg string, err error) *APIError {
	return newError(ErrorTypeQuery, msg, err)
}

// NewIOError creates an error for a failed file or fallback store write
func NewIOError(msg string, err error) *APIError {
	return newError(ErrorTypeIO, msg, err)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string, err error) *APIError {
	return newError(ErrorTypeNotFound, msg, err)
}

// NewInternalError creates a new internal server error
func NewInternalError(msg string, err error) *APIError {
	return newError(ErrorTypeInternal, msg, err)
}

// KindOf returns the ErrorType of the first APIError in err's chain.
// Errors that are not APIErrors are internal.
func KindOf(err error) ErrorType {
	if err == nil {
		return ErrorTypeNone
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ErrorTypeInternal
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	return KindOf(err) == ErrorTypeNotFound
}

// IsValidation checks if an error is a Validation error
func IsValidation(err error) bool {
	return KindOf(err) == ErrorTypeValidation
}

// IsConnection checks if an error is a Connection error
func IsConnection(err error) bool {
	return KindOf(err) == ErrorTypeConnection
}
