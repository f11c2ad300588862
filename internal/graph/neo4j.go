package graph

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/zero-day-ai/fraudgraph/internal/types"
	"github.com/zero-day-ai/fraudgraph/pkg/version"
)

// Neo4jClient implements Client on top of the official Neo4j driver.
// One driver (and therefore one bounded pool) is shared by the process; every
// call borrows a short-lived session from it.
type Neo4jClient struct {
	config ClientConfig
	driver neo4j.DriverWithContext
}

// NewNeo4jClient creates a new Neo4j client with the given configuration.
// The client must be connected via Connect() before use.
func NewNeo4jClient(config ClientConfig) (*Neo4jClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.ConnectRetries <= 0 {
		config.ConnectRetries = 1
	}
	return &Neo4jClient{config: config}, nil
}

// Connect establishes the driver and verifies connectivity.
// Uses exponential backoff between attempts.
func (c *Neo4jClient) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(c.config.Username, c.config.Password, "")

	driverConfig := func(config *neo4j.Config) {
		config.MaxConnectionPoolSize = c.config.MaxConnectionPoolSize
		config.ConnectionAcquisitionTimeout = c.config.ConnectionAcquisitionTimeout
		config.MaxConnectionLifetime = c.config.MaxConnectionLifetime
		config.MaxTransactionRetryTime = c.config.MaxTransactionRetryTime
		config.UserAgent = version.UserAgent()
	}

	var lastErr error
	baseDelay := 100 * time.Millisecond

	for attempt := 0; attempt < c.config.ConnectRetries; attempt++ {
		driver, err := neo4j.NewDriverWithContext(c.config.URI, auth, driverConfig)
		if err == nil {
			err = driver.VerifyConnectivity(ctx)
			if err == nil {
				c.driver = driver
				return nil
			}
			_ = driver.Close(ctx)
		}
		lastErr = err

		if ctx.Err() != nil {
			return NewConnectionError("connection attempt cancelled", ctx.Err())
		}
		if attempt == c.config.ConnectRetries-1 {
			break
		}

		// baseDelay * 2^attempt, capped by the acquisition timeout
		delay := baseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.config.ConnectionAcquisitionTimeout {
			delay = c.config.ConnectionAcquisitionTimeout
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return NewConnectionError("connection attempt cancelled", ctx.Err())
		}
	}

	return NewConnectionError(
		fmt.Sprintf("failed to connect to %s after %d attempts", c.config.URI, c.config.ConnectRetries), lastErr)
}

// Close releases the driver pool.
func (c *Neo4jClient) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}
	if err := c.driver.Close(ctx); err != nil {
		return NewConnectionError("failed to close driver", err)
	}
	c.driver = nil
	return nil
}

// Health returns the current health status of the Neo4j connection.
func (c *Neo4jClient) Health(ctx context.Context) types.HealthStatus {
	if c.driver == nil {
		return types.Unhealthy("driver not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	if err := c.driver.VerifyConnectivity(healthCtx); err != nil {
		return types.Unhealthy(fmt.Sprintf("connectivity check failed: %v", err)).WithLatency(time.Since(start))
	}
	return types.Healthy("connected to Neo4j").WithLatency(time.Since(start))
}

// Execute runs cypher in a write transaction.
func (c *Neo4jClient) Execute(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return c.run(ctx, neo4j.AccessModeWrite, cypher, params)
}

// ExecuteRead runs cypher in a read transaction.
func (c *Neo4jClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return c.run(ctx, neo4j.AccessModeRead, cypher, params)
}

func (c *Neo4jClient) run(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]any) ([]Record, error) {
	if c.driver == nil {
		return nil, NewConnectionError("driver not connected", nil)
	}
	if params == nil {
		params = map[string]any{}
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.config.Database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		raw, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(raw))
		for _, rec := range raw {
			records = append(records, Normalize(rowFromRecord(rec)))
		}
		return records, nil
	}

	var (
		out any
		err error
	)
	if mode == neo4j.AccessModeRead {
		out, err = session.ExecuteRead(ctx, work)
	} else {
		out, err = session.ExecuteWrite(ctx, work)
	}
	if err != nil {
		return nil, translateError(err)
	}
	return out.([]Record), nil
}

// translateError maps driver failures onto the connection/query taxonomy.
// Managed transactions wrap exhausted retries in a TransactionExecutionLimit
// whose Errors carry the real causes; an unreachable store or a pool timeout
// surfaces that way.
func translateError(err error) error {
	if unavailable(err) {
		return NewConnectionError("graph store unavailable", err)
	}
	var limit *neo4j.TransactionExecutionLimit
	if errors.As(err, &limit) {
		for i := len(limit.Errors) - 1; i >= 0; i-- {
			if unavailable(limit.Errors[i]) {
				return NewConnectionError("graph store unavailable", err)
			}
		}
		for i := len(limit.Errors) - 1; i >= 0; i-- {
			if q, ok := rejected(limit.Errors[i]); ok {
				return q
			}
		}
		return NewQueryError("transaction retry budget exhausted", err)
	}
	if q, ok := rejected(err); ok {
		return q
	}
	return NewQueryError("query execution failed", err)
}

// unavailable reports connectivity failures. Retryable errors that are not
// server-side Neo4jErrors are pool or transport failures (the pool timeout
// type itself is internal to the driver).
func unavailable(err error) bool {
	if err == nil {
		return false
	}
	var connErr *neo4j.ConnectivityError
	if errors.As(err, &connErr) {
		return true
	}
	var neoErr *neo4j.Neo4jError
	return !errors.As(err, &neoErr) && neo4j.IsRetryable(err)
}

func rejected(err error) (error, bool) {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		return NewQueryError(fmt.Sprintf("query rejected (%s)", neoErr.Code), err), true
	}
	return nil, false
}
