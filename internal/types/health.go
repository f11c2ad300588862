package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// HealthState is the coarse condition of the graph store as seen by a probe.
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateDegraded  HealthState = "degraded"
	HealthStateUnhealthy HealthState = "unhealthy"
)

func (s HealthState) String() string {
	return string(s)
}

// IsValid reports whether s is one of the three known states.
func (s HealthState) IsValid() bool {
	return s == HealthStateHealthy || s == HealthStateDegraded || s == HealthStateUnhealthy
}

// UnmarshalJSON rejects unknown states.
func (s *HealthState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if state := HealthState(raw); state.IsValid() {
		*s = state
		return nil
	}
	return fmt.Errorf("invalid health state: %s", raw)
}

// HealthStatus is the outcome of a single health probe. Latency is the probe
// round trip and is omitted when no probe reached the store.
type HealthStatus struct {
	State     HealthState   `json:"state"`
	Message   string        `json:"message,omitempty"`
	Latency   time.Duration `json:"latency_ns,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
}

func probe(state HealthState, message string) HealthStatus {
	return HealthStatus{State: state, Message: message, CheckedAt: time.Now()}
}

func Healthy(message string) HealthStatus { return probe(HealthStateHealthy, message) }
func Degraded(message string) HealthStatus { return probe(HealthStateDegraded, message) }
func Unhealthy(message string) HealthStatus { return probe(HealthStateUnhealthy, message) }

// WithLatency returns a copy carrying the probe round-trip time.
func (h HealthStatus) WithLatency(d time.Duration) HealthStatus {
	h.Latency = d
	return h
}

func (h HealthStatus) IsHealthy() bool { return h.State == HealthStateHealthy }
func (h HealthStatus) IsDegraded() bool { return h.State == HealthStateDegraded }
func (h HealthStatus) IsUnhealthy() bool { return h.State == HealthStateUnhealthy }
