package graph

import (
	"context"

	"github.com/zero-day-ai/fraudgraph/internal/types"
)

// Executor runs parameterized Cypher against the graph store and returns
// normalized records. Implementations must be safe for concurrent use.
type Executor interface {
	// Execute runs cypher in a write-capable transaction.
	Execute(ctx context.Context, cypher string, params map[string]any) ([]Record, error)

	// ExecuteRead runs cypher in a read-routed transaction. Finders and
	// detection queries use this path.
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]Record, error)
}

// HealthChecker reports the health of the backing store.
type HealthChecker interface {
	Health(ctx context.Context) types.HealthStatus
}

// Client is an Executor with an explicit connection lifecycle.
type Client interface {
	Executor
	HealthChecker

	// Connect opens the driver pool and verifies the store is reachable.
	Connect(ctx context.Context) error

	// Close drains and releases the driver pool.
	Close(ctx context.Context) error
}
