package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/fraudgraph/internal/config"
	"github.com/zero-day-ai/fraudgraph/internal/contextkeys"
)

const redacted = "[REDACTED]"

var sensitiveKeys = map[string]bool{
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"credential":    true,
	"credentials":   true,
	"apikey":        true,
	"secretkey":     true,
	"authorization": true,
}

// NewLogger builds the process logger from the logging section of the config.
func NewLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		handler = NewJSONHandler(w, level)
	case "text":
		handler = NewTextHandler(w, level)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	return slog.New(NewTracedHandler(handler)), nil
}

// ParseLevel maps a configured level name onto slog levels.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

// NewJSONHandler creates a new JSON log handler with the specified output and level.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// NewTextHandler creates a new text log handler with the specified output and level.
func NewTextHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// TracedHandler is a slog.Handler with automatic trace correlation.
// Every record gains trace_id and span_id from the OpenTelemetry span in the
// context, and request_id when one was attached with contextkeys.WithRequestID.
// Sensitive attributes are redacted at info level and above; debug records
// keep all fields.
type TracedHandler struct {
	inner           slog.Handler
	redactSensitive bool
}

// NewTracedHandler wraps inner with trace correlation and redaction.
func NewTracedHandler(inner slog.Handler) *TracedHandler {
	return &TracedHandler{inner: inner, redactSensitive: true}
}

// Enabled reports whether the wrapped handler handles records at level.
func (h *TracedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds correlation attributes and forwards the record.
func (h *TracedHandler) Handle(ctx context.Context, r slog.Record) error {
	out := r.Clone()
	if h.redactSensitive && r.Level >= slog.LevelInfo {
		out = slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
		r.Attrs(func(a slog.Attr) bool {
			out.AddAttrs(redactAttr(a))
			return true
		})
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		out.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if id := contextkeys.GetRequestID(ctx); id != "" {
		out.AddAttrs(slog.String("request_id", id))
	}

	return h.inner.Handle(ctx, out)
}

// WithAttrs redacts bound attributes regardless of level, since the level of
// later records is unknown.
func (h *TracedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if h.redactSensitive {
		clean := make([]slog.Attr, len(attrs))
		for i, a := range attrs {
			clean[i] = redactAttr(a)
		}
		attrs = clean
	}
	return &TracedHandler{inner: h.inner.WithAttrs(attrs), redactSensitive: h.redactSensitive}
}

func (h *TracedHandler) WithGroup(name string) slog.Handler {
	return &TracedHandler{inner: h.inner.WithGroup(name), redactSensitive: h.redactSensitive}
}

func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]any, len(group))
		for i, g := range group {
			clean[i] = redactAttr(g)
		}
		return slog.Group(a.Key, clean...)
	}
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, redacted)
	}
	return a
}

func isSensitiveKey(key string) bool {
	normalized := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(key))
	return sensitiveKeys[normalized]
}
