package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/zero-day-ai/fraudgraph/internal/config"
	"github.com/zero-day-ai/fraudgraph/internal/types"
)

// Meter names used across fraudgraph.
const (
	MeterGraph = "fraudgraph.graph"
	MeterAPI   = "fraudgraph.api"
)

// Metrics bundles the meter provider with its Prometheus scrape handler.
type Metrics struct {
	provider metric.MeterProvider
	sdk      *sdkmetric.MeterProvider
	handler  http.Handler
}

// InitMetrics initializes the metrics pipeline.
//
// When enabled, instruments recorded through Meter are collected by the
// OpenTelemetry Prometheus exporter into a private registry that also carries
// the Go runtime and process collectors. Handler serves that registry.
// When disabled, Meter returns no-op meters and Handler is nil.
func InitMetrics(cfg config.MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{provider: noop.NewMeterProvider()}, nil
	}

	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, types.WrapError(ErrCodeRegistration, "failed to register go collector", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, types.WrapError(ErrCodeRegistration, "failed to register process collector", err)
	}

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, types.WrapError(ErrCodeExporter, "failed to create prometheus exporter", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &Metrics{
		provider: provider,
		sdk:      provider,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}, nil
}

// Meter returns a named meter.
func (m *Metrics) Meter(name string) metric.Meter {
	return m.provider.Meter(name)
}

// Handler returns the Prometheus scrape handler, or nil when metrics are disabled.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// Enabled reports whether metrics are collected.
func (m *Metrics) Enabled() bool {
	return m.sdk != nil
}

// Shutdown stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.sdk == nil {
		return nil
	}
	if err := m.sdk.Shutdown(ctx); err != nil {
		return types.WrapError(ErrCodeShutdown, "failed to shutdown meter provider", err)
	}
	return nil
}
