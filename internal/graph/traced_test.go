package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTracedForTest(t *testing.T, inner Executor) (*TracedExecutor, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	traced, err := NewTracedExecutor(inner, tp.Tracer("test"), WithMeter(mp.Meter("test")))
	require.NoError(t, err)
	return traced, recorder, reader
}

func TestTracedExecutor_Success(t *testing.T) {
	mock := NewMockExecutor()
	mock.AddRows(NewRow("n", 1), NewRow("n", 2))
	traced, recorder, reader := newTracedForTest(t, mock)

	records, err := traced.ExecuteRead(context.Background(), "MATCH (n) RETURN n", nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanExecuteRead, spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["fraudgraph.graph.query.duration"])
	assert.True(t, names["fraudgraph.graph.query.records"])
}

func TestTracedExecutor_Error(t *testing.T) {
	mock := NewMockExecutor()
	failure := NewQueryError("rejected", errors.New("syntax"))
	mock.AddError(failure)
	traced, recorder, _ := newTracedForTest(t, mock)

	_, err := traced.Execute(context.Background(), "CREATE (", nil)
	assert.ErrorIs(t, err, failure)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanExecute, spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.NotEmpty(t, spans[0].Events())
}

func TestTracedExecutor_DefaultMeter(t *testing.T) {
	traced, err := NewTracedExecutor(NewMockExecutor(), sdktrace.NewTracerProvider().Tracer("test"))
	require.NoError(t, err)

	_, err = traced.ExecuteRead(context.Background(), "RETURN 1", nil)
	assert.NoError(t, err)
}
