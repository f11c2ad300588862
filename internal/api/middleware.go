package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/zero-day-ai/fraudgraph/internal/contextkeys"
)

// HeaderRequestID carries the correlation id in both directions.
const HeaderRequestID = "X-Request-ID"

// requestID reuses a well-formed inbound X-Request-ID or mints a UUID, echoes it
// on the response and stores it in the request context for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := contextkeys.WithRequestID(r.Context(), id)
		ctx = contextkeys.WithCaller(ctx, "api")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

func newRequestMetrics(meter metric.Meter) (*requestMetrics, error) {
	requests, err := meter.Int64Counter("fraudgraph.api.requests",
		metric.WithDescription("HTTP requests served"))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("fraudgraph.api.request.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return &requestMetrics{requests: requests, latency: latency}, nil
}

// observe logs each request and records it on the meter, labelled by route pattern
// so ids do not explode cardinality.
func (s *Server) observe(m *requestMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)

			attrs := metric.WithAttributes(
				attribute.String("method", r.Method),
				attribute.String("route", route),
				attribute.Int("status", status),
			)
			m.requests.Add(r.Context(), 1, attrs)
			m.latency.Record(r.Context(), float64(elapsed.Microseconds())/1000.0, attrs)

			s.logger.DebugContext(r.Context(), "http request",
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", elapsed)
		})
	}
}

// requireRawQueries gates the Cypher passthrough routes.
func (s *Server) requireRawQueries(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.cfg.AllowRawQueries {
			writeFailure(w, http.StatusForbidden, KindForbidden, "raw queries are disabled (api.allow_raw_queries)")
			return
		}
		next.ServeHTTP(w, r)
	})
}
