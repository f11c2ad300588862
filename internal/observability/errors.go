package observability

import "github.com/zero-day-ai/fraudgraph/internal/types"

// Error codes for telemetry setup.
const (
	ErrCodeExporter       types.ErrorCode = "OBSERVABILITY_EXPORTER_FAILED"
	ErrCodeRegistration   types.ErrorCode = "OBSERVABILITY_REGISTRATION_FAILED"
	ErrCodeShutdown       types.ErrorCode = "OBSERVABILITY_SHUTDOWN_FAILED"
	ErrCodeInvalidTracing types.ErrorCode = "OBSERVABILITY_INVALID_CONFIG"
)

// NewExporterConnectionError reports an exporter that could not be created.
func NewExporterConnectionError(endpoint string, cause error) *types.FraudGraphError {
	return types.WrapRetryableError(ErrCodeExporter, "failed to create exporter", cause).
		WithContext("endpoint", endpoint)
}
