package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthState_IsValid(t *testing.T) {
	tests := []struct {
		state HealthState
		want  bool
	}{
		{HealthStateHealthy, true},
		{HealthStateDegraded, true},
		{HealthStateUnhealthy, true},
		{HealthState("unknown"), false},
		{HealthState(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.IsValid())
		})
	}
}

func TestHealthState_UnmarshalJSON(t *testing.T) {
	var s HealthState
	require.NoError(t, json.Unmarshal([]byte(`"degraded"`), &s))
	assert.Equal(t, HealthStateDegraded, s)

	err := json.Unmarshal([]byte(`"sideways"`), &s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid health state")
}

func TestHealthStatus_Constructors(t *testing.T) {
	assert.True(t, Healthy("ok").IsHealthy())
	assert.True(t, Degraded("slow").IsDegraded())
	assert.True(t, Unhealthy("down").IsUnhealthy())
	assert.False(t, Unhealthy("down").IsHealthy())

	status := Healthy("connected")
	assert.Equal(t, "connected", status.Message)
	assert.WithinDuration(t, time.Now(), status.CheckedAt, time.Second)
}

func TestHealthStatus_WithLatency(t *testing.T) {
	base := Healthy("connected")
	withLatency := base.WithLatency(15 * time.Millisecond)

	assert.Equal(t, 15*time.Millisecond, withLatency.Latency)
	assert.Zero(t, base.Latency, "WithLatency must not mutate the receiver")
}

func TestHealthStatus_JSON(t *testing.T) {
	status := HealthStatus{
		State:     HealthStateHealthy,
		CheckedAt: time.Date(2025, 12, 25, 10, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(status)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "healthy", raw["state"])
	assert.NotContains(t, raw, "message")
	assert.NotContains(t, raw, "latency_ns")

	var decoded HealthStatus
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.CheckedAt.Equal(status.CheckedAt))
}
