// Package observability wires structured logging, tracing and metrics for fraudgraph.
//
// Logging is log/slog with a handler that correlates every record with the
// active OpenTelemetry span and the request id carried in the context, and
// that redacts credential-like attributes at info level and above.
//
// Tracing exports spans over OTLP/gRPC when enabled. Metrics are collected by
// the OpenTelemetry SDK and exposed in Prometheus text format on the HTTP API.
package observability
