// Package contextkeys provides shared context key definitions used across fraudgraph packages.
// It exists so the HTTP layer and the logging handler can agree on keys without importing each other.
package contextkeys

import "context"

// Key is the type for all fraudgraph context keys.
type Key string

const (
	// RequestID stores the correlation id of the inbound request or CLI run.
	RequestID Key = "fraudgraph.request_id"

	// Caller stores the entry point that started the operation, e.g. "api" or "cli".
	Caller Key = "fraudgraph.caller"
)

// WithRequestID returns a new context with the request ID set.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestID, requestID)
}

// GetRequestID retrieves the request ID from context.
// Returns empty string if not set.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestID).(string); ok {
		return v
	}
	return ""
}

// WithCaller returns a new context with the caller set.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, Caller, caller)
}

// GetCaller retrieves the caller from context.
func GetCaller(ctx context.Context) string {
	if v, ok := ctx.Value(Caller).(string); ok {
		return v
	}
	return ""
}
