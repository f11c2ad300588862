package graph

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/fraudgraph/internal/types"
)

// Span names emitted by TracedExecutor.
const (
	SpanExecute     = "fraudgraph.graph.execute"
	SpanExecuteRead = "fraudgraph.graph.execute_read"
)

// TracedExecutor wraps an Executor with OpenTelemetry tracing and metrics.
// Each call gets its own span; duration and returned record counts are
// recorded on the configured meter.
//
// Thread-safety: Safe for concurrent access (delegates to inner executor).
type TracedExecutor struct {
	inner    Executor
	tracer   trace.Tracer
	duration metric.Float64Histogram
	records  metric.Int64Counter
	errors   metric.Int64Counter
}

// TracedOption configures a TracedExecutor.
type TracedOption func(*tracedOptions)

type tracedOptions struct {
	meter metric.Meter
}

// WithMeter records query metrics on meter. Without it metrics are discarded.
func WithMeter(meter metric.Meter) TracedOption {
	return func(o *tracedOptions) {
		o.meter = meter
	}
}

// NewTracedExecutor creates a traced executor.
//
// Example:
//
//	exec := graph.NewTracedExecutor(client, otel.Tracer("fraudgraph.graph"),
//	    graph.WithMeter(otel.Meter("fraudgraph.graph")))
func NewTracedExecutor(inner Executor, tracer trace.Tracer, opts ...TracedOption) (*TracedExecutor, error) {
	o := tracedOptions{meter: noop.NewMeterProvider().Meter("fraudgraph.graph")}
	for _, opt := range opts {
		opt(&o)
	}

	duration, err := o.meter.Float64Histogram("fraudgraph.graph.query.duration",
		metric.WithDescription("Duration of graph queries"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	records, err := o.meter.Int64Counter("fraudgraph.graph.query.records",
		metric.WithDescription("Records returned by graph queries"))
	if err != nil {
		return nil, err
	}
	errs, err := o.meter.Int64Counter("fraudgraph.graph.query.errors",
		metric.WithDescription("Failed graph queries by error code"))
	if err != nil {
		return nil, err
	}

	return &TracedExecutor{
		inner:    inner,
		tracer:   tracer,
		duration: duration,
		records:  records,
		errors:   errs,
	}, nil
}

// Execute runs a write query inside a "fraudgraph.graph.execute" span.
func (t *TracedExecutor) Execute(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return t.traced(ctx, SpanExecute, "write", cypher, params, t.inner.Execute)
}

// ExecuteRead runs a read query inside a "fraudgraph.graph.execute_read" span.
func (t *TracedExecutor) ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return t.traced(ctx, SpanExecuteRead, "read", cypher, params, t.inner.ExecuteRead)
}

type execFunc func(ctx context.Context, cypher string, params map[string]any) ([]Record, error)

func (t *TracedExecutor) traced(ctx context.Context, spanName, mode, cypher string, params map[string]any, fn execFunc) ([]Record, error) {
	ctx, span := t.tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "neo4j"),
		attribute.String("db.operation", mode),
		attribute.String("db.statement", cypher),
		attribute.Int("fraudgraph.graph.param_count", len(params)),
	)

	start := time.Now()
	records, err := fn(ctx, cypher, params)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	modeAttr := metric.WithAttributes(attribute.String("mode", mode))
	t.duration.Record(ctx, elapsed, modeAttr)

	if err != nil {
		code := string(types.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.code", code))
		t.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("mode", mode),
			attribute.String("code", code),
		))
		return nil, err
	}

	span.SetAttributes(attribute.Int("fraudgraph.graph.record_count", len(records)))
	span.SetStatus(codes.Ok, "")
	t.records.Add(ctx, int64(len(records)), modeAttr)
	return records, nil
}
