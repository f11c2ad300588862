// Package entities layers per-kind finders on top of the generic repository.
// Each finder type embeds a *repository.Repository bound to its label, so the
// generic CRUD surface is available alongside the natural-key and predicate
// queries. All finders read through ExecuteRead.
package entities

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/repository"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

// DefaultResultLimit caps the rows a multi-row finder returns.
const DefaultResultLimit = 1000

// Option configures a finder set.
type Option func(*options)

type options struct {
	now      func() time.Time
	limit    int
	repoOpts []repository.Option
}

// WithClock overrides the clock used for trailing day-windows.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithResultLimit overrides DefaultResultLimit. Non-positive values are ignored.
func WithResultLimit(limit int) Option {
	return func(o *options) {
		if limit > 0 {
			o.limit = limit
		}
	}
}

// WithRepositoryOptions passes options through to the embedded repository.
func WithRepositoryOptions(opts ...repository.Option) Option {
	return func(o *options) {
		o.repoOpts = append(o.repoOpts, opts...)
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, limit: DefaultResultLimit}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// finder carries what every kind shares.
type finder struct {
	*repository.Repository
	now   func() time.Time
	limit int
}

func newFinder(exec graph.Executor, label schema.Label, opts []Option) finder {
	o := buildOptions(opts)
	return finder{
		Repository: repository.New(exec, label, o.repoOpts...),
		now:        o.now,
		limit:      o.limit,
	}
}

// read runs a finder query capped at the result limit. Queries that set their
// own LIMIT keep it.
func (f finder) read(ctx context.Context, cypher string, params map[string]any) ([]graph.Record, error) {
	if strings.Contains(cypher, "LIMIT") {
		return f.Executor().ExecuteRead(ctx, cypher, params)
	}
	bound := make(map[string]any, len(params)+1)
	maps.Copy(bound, params)
	bound["limit"] = int64(f.limit)
	return f.Executor().ExecuteRead(ctx, cypher+"\n\t\tLIMIT $limit", bound)
}

// readOne runs a natural-key lookup and returns the first match of key.
func (f finder) readOne(ctx context.Context, cypher, key string, params map[string]any) (graph.Projection, bool, error) {
	records, err := f.read(ctx, cypher, params)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	p, ok := records[0].Projection(key)
	return p, ok, nil
}

func (f finder) readAll(ctx context.Context, cypher, key string, params map[string]any) ([]graph.Projection, error) {
	records, err := f.read(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return graph.Projections(records, key), nil
}

// since returns the start of a trailing window of the given number of days.
func (f finder) since(days int) time.Time {
	return f.now().UTC().AddDate(0, 0, -days)
}

func requireKey(name, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", graph.NewValidationError(fmt.Sprintf("%s is required", name))
	}
	return trimmed, nil
}

func requireRange(name string, min, max float64) error {
	if min > max {
		return graph.NewValidationError(fmt.Sprintf("%s: minimum %v exceeds maximum %v", name, min, max))
	}
	return nil
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
