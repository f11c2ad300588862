// Package fraud encodes the fraud-pattern analytics as parameterized,
// read-only graph queries. Every algorithm is idempotent and safe to run
// concurrently with writes.
package fraud

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zero-day-ai/fraudgraph/internal/contextkeys"
	"github.com/zero-day-ai/fraudgraph/internal/graph"
)

// Algorithm names, used as report keys, API paths and CLI subcommands.
const (
	AlgLayeredLaundering    = "layered-laundering"
	AlgSharedDevices        = "shared-devices"
	AlgRapidSuccession      = "rapid-succession"
	AlgOutlierAmounts       = "outlier-amounts"
	AlgActivityAcceleration = "activity-acceleration"
	AlgRiskBuckets          = "risk-buckets"
)

// DefaultResultLimit caps the rows any single detection query returns.
const DefaultResultLimit = 1000

// Defaults holds the thresholds used when a caller leaves an option at its zero
// value. Zero is never a requested threshold: omitted config keys, JSON fields
// and query parameters all decode to zero.
type Defaults struct {
	Laundering   LaunderingOptions
	MinClients   int
	Rapid        RapidOptions
	Outliers     OutlierOptions
	Acceleration AccelerationOptions
	ResultLimit  int
}

// DefaultDefaults returns the built-in thresholds.
func DefaultDefaults() Defaults {
	return Defaults{
		Laundering: LaunderingOptions{
			MaxGapDays:         DefaultMaxGapDays,
			MaxAmountDeviation: DefaultMaxAmountDeviation,
		},
		MinClients: DefaultMinClients,
		Rapid: RapidOptions{
			MinTransactions:   DefaultMinTransactions,
			TimeWindowMinutes: DefaultTimeWindowMinutes,
		},
		Outliers: OutlierOptions{
			Multiplier:  DefaultOutlierMultiplier,
			AmountFloor: DefaultAmountFloor,
		},
		Acceleration: AccelerationOptions{
			Days:              DefaultAccelerationDays,
			IncreaseThreshold: DefaultIncreaseThreshold,
		},
		ResultLimit: DefaultResultLimit,
	}
}

// Engine runs detection algorithms against a graph executor.
type Engine struct {
	exec     graph.Executor
	now      func() time.Time
	logger   *slog.Logger
	defaults Defaults
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the clock used for trailing windows.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDefaults replaces the thresholds applied to zero-valued options.
// Zero fields in d keep the built-in value.
func WithDefaults(d Defaults) EngineOption {
	return func(e *Engine) {
		e.defaults.Laundering = d.Laundering.withDefaults(e.defaults.Laundering)
		if d.MinClients > 0 {
			e.defaults.MinClients = d.MinClients
		}
		e.defaults.Rapid = d.Rapid.withDefaults(e.defaults.Rapid)
		e.defaults.Outliers = d.Outliers.withDefaults(e.defaults.Outliers)
		e.defaults.Acceleration = d.Acceleration.withDefaults(e.defaults.Acceleration)
		if d.ResultLimit > 0 {
			e.defaults.ResultLimit = d.ResultLimit
		}
	}
}

// NewEngine creates a detection engine.
func NewEngine(exec graph.Executor, opts ...EngineOption) *Engine {
	e := &Engine{
		exec:     exec,
		now:      time.Now,
		logger:   slog.Default(),
		defaults: DefaultDefaults(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Defaults returns the thresholds in effect.
func (e *Engine) Defaults() Defaults {
	return e.defaults
}

func (e *Engine) read(ctx context.Context, algorithm, cypher string, params map[string]any) ([]graph.Record, error) {
	start := time.Now()
	caller := contextkeys.GetCaller(ctx)
	records, err := e.exec.ExecuteRead(ctx, cypher, params)
	if err != nil {
		e.logger.WarnContext(ctx, "detection query failed", "algorithm", algorithm, "caller", caller, "error", err)
		return nil, err
	}
	e.logger.DebugContext(ctx, "detection query completed",
		"algorithm", algorithm,
		"caller", caller,
		"records", len(records),
		"duration", time.Since(start))
	return records, nil
}

// RunAllOptions selects thresholds for RunAll. Zero values use the engine defaults.
type RunAllOptions struct {
	Laundering   LaunderingOptions
	MinClients   int
	Outliers     OutlierOptions
	Acceleration AccelerationOptions
}

// Report collects the output of every account-independent algorithm.
type Report struct {
	GeneratedAt   time.Time             `json:"generatedAt"`
	Laundering    []LaunderingChain     `json:"layered-laundering"`
	SharedDevices []SharedDevice        `json:"shared-devices"`
	Outliers      []OutlierTransaction  `json:"outlier-amounts"`
	Acceleration  []AcceleratingAccount `json:"activity-acceleration"`
	RiskBuckets   []RiskBucket          `json:"risk-buckets"`
}

// Sections returns the report keyed by algorithm name.
func (r *Report) Sections() map[string]any {
	return map[string]any{
		AlgLayeredLaundering:    r.Laundering,
		AlgSharedDevices:        r.SharedDevices,
		AlgOutlierAmounts:       r.Outliers,
		AlgActivityAcceleration: r.Acceleration,
		AlgRiskBuckets:          r.RiskBuckets,
	}
}

// RunAll runs every account-independent algorithm concurrently. The first
// failure cancels the rest and is returned.
func (e *Engine) RunAll(ctx context.Context, opts RunAllOptions) (*Report, error) {
	report := &Report{GeneratedAt: e.now().UTC()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		report.Laundering, err = e.LayeredLaundering(gctx, opts.Laundering)
		return err
	})
	g.Go(func() error {
		var err error
		report.SharedDevices, err = e.SharedDevices(gctx, opts.MinClients)
		return err
	})
	g.Go(func() error {
		var err error
		report.Outliers, err = e.OutlierAmounts(gctx, opts.Outliers)
		return err
	})
	g.Go(func() error {
		var err error
		report.Acceleration, err = e.ActivityAcceleration(gctx, opts.Acceleration)
		return err
	})
	g.Go(func() error {
		var err error
		report.RiskBuckets, err = e.RiskBuckets(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func projection(r graph.Record, key string) graph.Projection {
	p, _ := r.Projection(key)
	return p
}

func integer(r graph.Record, key string) int64 {
	n, _ := graph.AsInt64(r.Value(key))
	return n
}

func number(r graph.Record, key string) float64 {
	f, _ := graph.AsFloat(r.Value(key))
	return f
}

// optionalNumber returns nil when the field is null, such as avg() over no rows.
func optionalNumber(r graph.Record, key string) *float64 {
	f, ok := graph.AsFloat(r.Value(key))
	if !ok {
		return nil
	}
	return &f
}
