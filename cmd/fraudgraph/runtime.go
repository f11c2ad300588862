package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/zero-day-ai/fraudgraph/cmd/fraudgraph/internal"
	"github.com/zero-day-ai/fraudgraph/internal/config"
	"github.com/zero-day-ai/fraudgraph/internal/fraud"
	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/observability"
)

const closeTimeout = 10 * time.Second

// newGraphClient opens the graph store. Tests replace it with a mock.
var newGraphClient = func(cfg graph.ClientConfig) (graph.Client, error) {
	client, err := graph.NewNeo4jClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// runtime is a connected graph client with its telemetry pipeline.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  graph.Client
	exec    graph.Executor
	tracing *sdktrace.TracerProvider
	metrics *observability.Metrics
}

// openRuntime initializes tracing and metrics, connects to the graph and
// wraps the client in a traced executor. Callers must Close it.
func openRuntime(ctx context.Context) (*runtime, error) {
	if current == nil || current.cfg == nil {
		return nil, internal.NewCLIError(internal.ExitConfigError, "configuration not loaded")
	}
	cfg := current.cfg
	rt := &runtime{cfg: cfg, logger: current.logger}

	tp, err := observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		return nil, internal.WrapError(internal.ExitConfigError, "failed to initialize tracing", err)
	}
	rt.tracing = tp

	metrics, err := observability.InitMetrics(cfg.Metrics)
	if err != nil {
		rt.Close(ctx)
		return nil, internal.WrapError(internal.ExitConfigError, "failed to initialize metrics", err)
	}
	rt.metrics = metrics

	client, err := newGraphClient(cfg.Neo4j.ClientConfig())
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		rt.Close(ctx)
		return nil, err
	}
	rt.client = client

	exec, err := graph.NewTracedExecutor(client, tp.Tracer(observability.MeterGraph),
		graph.WithMeter(metrics.Meter(observability.MeterGraph)))
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	rt.exec = exec

	rt.logger.DebugContext(ctx, "connected to graph", "uri", cfg.Neo4j.URI, "database", cfg.Neo4j.Database)
	return rt, nil
}

// engine builds a detection engine using the configured thresholds.
func (rt *runtime) engine() *fraud.Engine {
	return fraud.NewEngine(rt.exec,
		fraud.WithDefaults(rt.cfg.Detection.Defaults()),
		fraud.WithLogger(rt.logger))
}

// Close releases the driver and flushes telemetry. It is bounded by
// closeTimeout even when ctx is already cancelled.
func (rt *runtime) Close(ctx context.Context) {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	var errs []error
	if rt.client != nil {
		errs = append(errs, rt.client.Close(closeCtx))
	}
	if rt.metrics != nil {
		errs = append(errs, rt.metrics.Shutdown(closeCtx))
	}
	if rt.tracing != nil {
		errs = append(errs, observability.ShutdownTracing(closeCtx, rt.tracing))
	}
	if err := errors.Join(errs...); err != nil {
		rt.logger.WarnContext(ctx, "shutdown incomplete", "error", err)
	}
}
