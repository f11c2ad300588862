package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/fraudgraph/internal/types"
)

func TestClientConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ClientConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*ClientConfig) {}},
		{name: "empty URI", mutate: func(c *ClientConfig) { c.URI = "" }, wantErr: true},
		{name: "empty username", mutate: func(c *ClientConfig) { c.Username = "" }, wantErr: true},
		{name: "empty password", mutate: func(c *ClientConfig) { c.Password = "" }, wantErr: true},
		{name: "zero pool", mutate: func(c *ClientConfig) { c.MaxConnectionPoolSize = 0 }, wantErr: true},
		{name: "zero acquisition timeout", mutate: func(c *ClientConfig) { c.ConnectionAcquisitionTimeout = 0 }, wantErr: true},
		{name: "zero lifetime", mutate: func(c *ClientConfig) { c.MaxConnectionLifetime = 0 }, wantErr: true},
		{name: "negative retry time", mutate: func(c *ClientConfig) { c.MaxTransactionRetryTime = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, ErrCodeInvalidConfig, types.CodeOf(err))
		})
	}
}

func TestDefaultConfig_PoolBounds(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 50, cfg.MaxConnectionPoolSize)
	assert.Equal(t, 2*time.Minute, cfg.ConnectionAcquisitionTimeout)
	assert.Equal(t, 3*time.Hour, cfg.MaxConnectionLifetime)
	assert.Equal(t, 30*time.Second, cfg.MaxTransactionRetryTime)
}

func TestNeo4jClient_NotConnected(t *testing.T) {
	client, err := NewNeo4jClient(DefaultConfig())
	require.NoError(t, err)

	_, err = client.ExecuteRead(context.Background(), "RETURN 1", nil)
	assert.True(t, IsConnection(err))
	assert.True(t, client.Health(context.Background()).IsUnhealthy())
	assert.NoError(t, client.Close(context.Background()))
}

func TestNewNeo4jClient_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URI = ""
	_, err := NewNeo4jClient(cfg)
	assert.Error(t, err)
}
