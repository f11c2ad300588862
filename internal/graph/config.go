package graph

import (
	"time"

	"github.com/zero-day-ai/fraudgraph/internal/types"
)

// ClientConfig contains the connection and pool settings for the Neo4j client.
type ClientConfig struct {
	// URI is the connection URI for the graph database.
	//   - "bolt://host:port" for unencrypted connections
	//   - "bolt+s://host:port" for TLS encrypted connections
	//   - "neo4j://" or "neo4j+s://" for routing
	URI string

	Username string
	Password string

	// Database name to connect to. Empty uses the server default.
	Database string

	// MaxConnectionPoolSize bounds the number of pooled connections.
	MaxConnectionPoolSize int

	// ConnectionAcquisitionTimeout is how long a session waits for a pooled connection.
	ConnectionAcquisitionTimeout time.Duration

	// MaxConnectionLifetime retires pooled connections older than this.
	MaxConnectionLifetime time.Duration

	// MaxTransactionRetryTime bounds the driver's managed transaction retries.
	MaxTransactionRetryTime time.Duration

	// ConnectRetries is the number of Connect attempts before giving up.
	ConnectRetries int
}

// DefaultConfig returns a ClientConfig with the pool defaults used in production.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		URI:                          "bolt://localhost:7687",
		Username:                     "neo4j",
		Password:                     "password",
		MaxConnectionPoolSize:        50,
		ConnectionAcquisitionTimeout: 2 * time.Minute,
		MaxConnectionLifetime:        3 * time.Hour,
		MaxTransactionRetryTime:      30 * time.Second,
		ConnectRetries:               5,
	}
}

// Validate checks if the configuration is usable.
func (c ClientConfig) Validate() error {
	if c.URI == "" {
		return types.NewError(ErrCodeInvalidConfig, "URI cannot be empty")
	}
	if c.Username == "" {
		return types.NewError(ErrCodeInvalidConfig, "Username cannot be empty")
	}
	if c.Password == "" {
		return types.NewError(ErrCodeInvalidConfig, "Password cannot be empty")
	}
	if c.MaxConnectionPoolSize <= 0 {
		return types.NewError(ErrCodeInvalidConfig, "MaxConnectionPoolSize must be positive")
	}
	if c.ConnectionAcquisitionTimeout <= 0 {
		return types.NewError(ErrCodeInvalidConfig, "ConnectionAcquisitionTimeout must be positive")
	}
	if c.MaxConnectionLifetime <= 0 {
		return types.NewError(ErrCodeInvalidConfig, "MaxConnectionLifetime must be positive")
	}
	if c.MaxTransactionRetryTime <= 0 {
		return types.NewError(ErrCodeInvalidConfig, "MaxTransactionRetryTime must be positive")
	}
	return nil
}
