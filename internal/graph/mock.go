package graph

import (
	"context"
	"sync"
	"time"

	"github.com/zero-day-ai/fraudgraph/internal/types"
)

// MockCall represents a recorded call on the mock executor.
type MockCall struct {
	Method    string
	Cypher    string
	Params    map[string]any
	Timestamp time.Time
}

type mockResponse struct {
	records []Record
	err     error
}

// MockExecutor is an in-memory Client for tests. Responses are queued with
// AddRows, AddRecords or AddError and returned in FIFO order regardless of
// which method is called. With an empty queue every call returns no records.
type MockExecutor struct {
	mu sync.Mutex

	connected    bool
	healthStatus types.HealthStatus
	connectError error
	queue        []mockResponse
	calls        []MockCall
}

// NewMockExecutor creates a connected mock executor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		connected:    true,
		healthStatus: types.Healthy("mock graph executor"),
	}
}

// AddRows queues one response built from classified rows. Each row is
// normalized exactly like a live result.
func (m *MockExecutor) AddRows(rows ...Row) *MockExecutor {
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Normalize(row)
	}
	return m.AddRecords(records...)
}

// AddRecords queues one response of already normalized records.
func (m *MockExecutor) AddRecords(records ...Record) *MockExecutor {
	m.mu.Lock()
	defer m.mu.Unlock()
	if records == nil {
		records = []Record{}
	}
	m.queue = append(m.queue, mockResponse{records: records})
	return m
}

// AddError queues one failing response.
func (m *MockExecutor) AddError(err error) *MockExecutor {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockResponse{err: err})
	return m
}

// SetHealthStatus overrides the status returned by Health while connected.
func (m *MockExecutor) SetHealthStatus(status types.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus = status
}

// SetConnectError makes the next Connect calls fail with err.
func (m *MockExecutor) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
}

// Connect records the call and marks the mock connected.
func (m *MockExecutor) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Connect", "", nil)
	if m.connectError != nil {
		return m.connectError
	}
	m.connected = true
	return nil
}

// Close records the call and marks the mock disconnected.
func (m *MockExecutor) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Close", "", nil)
	m.connected = false
	return nil
}

// Health returns the configured status, or unhealthy when disconnected.
func (m *MockExecutor) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Health", "", nil)
	if !m.connected {
		return types.Unhealthy("not connected")
	}
	return m.healthStatus
}

// Execute records the call and returns the next queued response.
func (m *MockExecutor) Execute(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return m.next(ctx, "Execute", cypher, params)
}

// ExecuteRead records the call and returns the next queued response.
func (m *MockExecutor) ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return m.next(ctx, "ExecuteRead", cypher, params)
}

func (m *MockExecutor) next(ctx context.Context, method, cypher string, params map[string]any) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(method, cypher, params)

	if err := ctx.Err(); err != nil {
		return nil, NewQueryError("context done", err)
	}
	if !m.connected {
		return nil, NewConnectionError("driver not connected", nil)
	}
	if len(m.queue) == 0 {
		return []Record{}, nil
	}
	resp := m.queue[0]
	m.queue = m.queue[1:]
	if resp.err != nil {
		return nil, resp.err
	}
	return resp.records, nil
}

func (m *MockExecutor) record(method, cypher string, params map[string]any) {
	m.calls = append(m.calls, MockCall{
		Method:    method,
		Cypher:    cypher,
		Params:    params,
		Timestamp: time.Now(),
	})
}

// Calls returns a copy of every recorded call.
func (m *MockExecutor) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// QueryCalls returns only the Execute and ExecuteRead calls.
func (m *MockExecutor) QueryCalls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MockCall
	for _, c := range m.calls {
		if c.Method == "Execute" || c.Method == "ExecuteRead" {
			out = append(out, c)
		}
	}
	return out
}

// LastCall returns the most recent query call. It panics if there is none,
// which in a test means the code under test never reached the store.
func (m *MockExecutor) LastCall() MockCall {
	calls := m.QueryCalls()
	if len(calls) == 0 {
		panic("MockExecutor: no query calls recorded")
	}
	return calls[len(calls)-1]
}

// Pending returns the number of queued responses not yet consumed.
func (m *MockExecutor) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Reset clears the queue and call history.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = nil
	m.calls = nil
}

var _ Client = (*MockExecutor)(nil)
var _ Client = (*Neo4jClient)(nil)
var _ Executor = (*TracedExecutor)(nil)
