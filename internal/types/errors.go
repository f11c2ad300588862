package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for fraudgraph errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	CONFIG_NOT_FOUND         ErrorCode = "CONFIG_NOT_FOUND"
)

// FraudGraphError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type FraudGraphError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
	Context   map[string]any
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *FraudGraphError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *FraudGraphError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a FraudGraphError with the same Code.
func (e *FraudGraphError) Is(target error) bool {
	var fgErr *FraudGraphError
	if errors.As(target, &fgErr) {
		return e.Code == fgErr.Code
	}
	return false
}

// WithContext adds a debugging attribute to the error and returns it for chaining.
func (e *FraudGraphError) WithContext(key string, value any) *FraudGraphError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// NewError creates a new non-retryable FraudGraphError with the given code and message.
func NewError(code ErrorCode, message string) *FraudGraphError {
	return &FraudGraphError{
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// NewRetryableError creates a new retryable FraudGraphError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *FraudGraphError {
	return &FraudGraphError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable FraudGraphError that wraps an existing error.
func WrapError(code ErrorCode, message string, cause error) *FraudGraphError {
	return &FraudGraphError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// WrapRetryableError creates a new retryable FraudGraphError that wraps an existing error.
func WrapRetryableError(code ErrorCode, message string, cause error) *FraudGraphError {
	return &FraudGraphError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// IsRetryable reports whether err (or any error it wraps) is a retryable FraudGraphError.
func IsRetryable(err error) bool {
	var fgErr *FraudGraphError
	if errors.As(err, &fgErr) {
		return fgErr.Retryable
	}
	return false
}

// CodeOf returns the code of the first FraudGraphError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var fgErr *FraudGraphError
	if errors.As(err, &fgErr) {
		return fgErr.Code
	}
	return ""
}
