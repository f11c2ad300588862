// Package api serves the graph repository, the per-kind finders and the
// fraud detection engine over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/zero-day-ai/fraudgraph/internal/config"
	"github.com/zero-day-ai/fraudgraph/internal/entities"
	"github.com/zero-day-ai/fraudgraph/internal/fraud"
	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/repository"
)

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	cfg         config.APIConfig
	exec        graph.Executor
	health      graph.HealthChecker
	engine      *fraud.Engine
	logger      *slog.Logger
	metrics     http.Handler
	metricsPath string
	meter       metric.Meter

	clients      *entities.Clients
	accounts     *entities.Accounts
	devices      *entities.Devices
	locations    *entities.Locations
	transactions *entities.Transactions

	validate *validator.Validate
	handler  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEngine sets the fraud detection engine. Without it the server builds one over its executor.
func WithEngine(engine *fraud.Engine) Option {
	return func(s *Server) {
		s.engine = engine
	}
}

// WithMetricsHandler mounts h at path, typically the Prometheus scrape handler.
func WithMetricsHandler(path string, h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
		s.metricsPath = path
	}
}

// WithMeter records request counts and latencies on meter.
func WithMeter(meter metric.Meter) Option {
	return func(s *Server) {
		if meter != nil {
			s.meter = meter
		}
	}
}

// New creates a Server over exec. health answers GET /health.
func New(cfg config.APIConfig, exec graph.Executor, health graph.HealthChecker, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		exec:     exec,
		health:   health,
		logger:   slog.Default(),
		meter:    noop.NewMeterProvider().Meter("fraudgraph.api"),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = fraud.NewEngine(exec, fraud.WithLogger(s.logger))
	}

	entityOpts := []entities.Option{
		entities.WithResultLimit(s.engine.Defaults().ResultLimit),
		entities.WithRepositoryOptions(repository.WithLogger(s.logger)),
	}
	s.clients = entities.NewClients(exec, entityOpts...)
	s.accounts = entities.NewAccounts(exec, entityOpts...)
	s.devices = entities.NewDevices(exec, entityOpts...)
	s.locations = entities.NewLocations(exec, entityOpts...)
	s.transactions = entities.NewTransactions(exec, entityOpts...)

	handler, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.handler = handler
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests for up to the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "http server listening", "address", s.cfg.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.InfoContext(ctx, "http server draining", "timeout", s.cfg.ShutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// fail logs err and writes the matching error envelope.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.failWith(w, r, err, false)
}

func (s *Server) failWith(w http.ResponseWriter, r *http.Request, err error, rawQuery bool) {
	status, kind, message := statusFor(err, rawQuery)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"kind", kind,
		"error", err)
	writeFailure(w, status, kind, message)
}
