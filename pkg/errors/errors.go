package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Error codes, one per category the scheduling core distinguishes
const (
	ErrValidation ErrorCode = iota + 1000
	ErrConflict
	ErrNotFound
	ErrDependency
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewValidation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

func NewConflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
		Err:     err,
	}
}

func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

// NewDependency wraps failures of external collaborators (store, sender).
// These are retryable and not the caller's fault.
func NewDependency(operation string, err error) *AppError {
	return &AppError{
		Code:    ErrDependency,
		Message: fmt.Sprintf("%s unavailable", operation),
		Err:     err,
	}
}

// Code extracts the ErrorCode from err, or 0 if err is not an AppError.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

func IsValidation(err error) bool { return Code(err) == ErrValidation }
func IsConflict(err error) bool   { return Code(err) == ErrConflict }
func IsNotFound(err error) bool   { return Code(err) == ErrNotFound }
func IsDependency(err error) bool { return Code(err) == ErrDependency }
