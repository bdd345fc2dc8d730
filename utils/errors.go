package utils

import (
	"errors"
	"fmt"
)

// AppError represents a custom application error with context
type AppError struct {
	Code    int                    // HTTP status code
	Message string                 // User-friendly message
	Err     error                  // Underlying error
	Context map[string]interface{} // Additional context
}

// NewAppError creates a new AppError
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	e.Context[key] = value
	return e
}

// ErrorCode returns the HTTP status carried by err, or 500 when err is not an AppError
func ErrorCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 500
}

// PublicMessage returns the message that is safe to show to users
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong"
}

// IsValidation reports whether err was rejected as invalid input
func IsValidation(err error) bool {
	return err != nil && ErrorCode(err) == 400
}

// IsNotFound reports whether err targets a missing record
func IsNotFound(err error) bool {
	return err != nil && ErrorCode(err) == 404
}

// Common error constructors
func BadRequestError(message string, err error) *AppError {
	return NewAppError(400, message, err)
}

func UnauthorizedError(message string, err error) *AppError {
	return NewAppError(401, message, err)
}

func NotFoundError(message string, err error) *AppError {
	return NewAppError(404, message, err)
}

func InternalServerError(message string, err error) *AppError {
	return NewAppError(500, message, err)
}

// ValidationError marks input rejected before it reaches persistence
func ValidationError(message string, err error) *AppError {
	return BadRequestError(message, err)
}

// StorageError marks an I/O or connection failure in a backend
func StorageError(message string, err error) *AppError {
	return InternalServerError(message, err)
}
