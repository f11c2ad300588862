package graph

import (
	"errors"

	"github.com/zero-day-ai/fraudgraph/internal/types"
)

// Error codes for the graph access layer. Every failure surfaced by the
// executor, repository, finders and detection engine carries one of these.
const (
	// ErrCodeValidation marks malformed or missing caller input. Never retried.
	ErrCodeValidation types.ErrorCode = "VALIDATION_FAILED"

	// ErrCodeConnectionFailed marks an unreachable store or an exhausted pool. Safe to retry with backoff.
	ErrCodeConnectionFailed types.ErrorCode = "GRAPH_CONNECTION_FAILED"

	// ErrCodeQueryFailed marks a query the store rejected (syntax, constraint, timeout).
	ErrCodeQueryFailed types.ErrorCode = "GRAPH_QUERY_FAILED"

	// ErrCodeInvalidConfig marks an unusable client configuration.
	ErrCodeInvalidConfig types.ErrorCode = "GRAPH_INVALID_CONFIG"
)

// NewValidationError creates a non-retryable validation error.
func NewValidationError(message string) *types.FraudGraphError {
	return types.NewError(ErrCodeValidation, message)
}

// NewConnectionError creates a retryable connection error wrapping the driver cause.
func NewConnectionError(message string, cause error) *types.FraudGraphError {
	return types.WrapRetryableError(ErrCodeConnectionFailed, message, cause)
}

// NewQueryError creates a non-retryable query error. The driver diagnostic is kept as the cause.
func NewQueryError(message string, cause error) *types.FraudGraphError {
	return types.WrapError(ErrCodeQueryFailed, message, cause)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsConnection reports whether err is a ConnectionError.
func IsConnection(err error) bool {
	return hasCode(err, ErrCodeConnectionFailed)
}

// IsQuery reports whether err is a QueryError.
func IsQuery(err error) bool {
	return hasCode(err, ErrCodeQueryFailed)
}

func hasCode(err error, code types.ErrorCode) bool {
	var fgErr *types.FraudGraphError
	if errors.As(err, &fgErr) {
		return fgErr.Code == code
	}
	return false
}
