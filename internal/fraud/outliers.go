package fraud

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

// Outlier defaults.
const (
	DefaultOutlierMultiplier = 3.0
	DefaultAmountFloor       = 10000.0
)

// OutlierOptions sets when an amount counts as anomalous. A zero field takes
// the engine default.
type OutlierOptions struct {
	// Multiplier of the account's historical average amount.
	Multiplier float64 `json:"multiplier" mapstructure:"multiplier"`
	// AmountFloor flags any amount above it regardless of history.
	AmountFloor float64 `json:"amountFloor" mapstructure:"amount_floor"`
}

func (o OutlierOptions) withDefaults(d OutlierOptions) OutlierOptions {
	if o.Multiplier == 0 {
		o.Multiplier = d.Multiplier
	}
	if o.AmountFloor == 0 {
		o.AmountFloor = d.AmountFloor
	}
	return o
}

// OutlierTransaction is an anomalous transfer with its context.
type OutlierTransaction struct {
	Client          graph.Projection `json:"client"`
	Account         graph.Projection `json:"account"`
	Transaction     graph.Projection `json:"transaction"`
	Location        graph.Projection `json:"location"`
	Device          graph.Projection `json:"device,omitempty"`
	BaselineAverage float64          `json:"baselineAverage"`
}

// IsOutlierAmount reports whether amount exceeds multiplier times baseline
// or the absolute floor.
func IsOutlierAmount(amount, baseline float64, opts OutlierOptions) bool {
	return amount > opts.Multiplier*baseline || amount > opts.AmountFloor
}

// OutlierAmounts returns transactions above Multiplier times the account's
// average (the stored averageTransactionAmount, else the computed one) or
// above AmountFloor. Only transactions with a location are reported; the
// device is attached when present. Ordered by amount then risk score.
func (e *Engine) OutlierAmounts(ctx context.Context, opts OutlierOptions) ([]OutlierTransaction, error) {
	opts = opts.withDefaults(e.defaults.Outliers)
	if opts.Multiplier < 0 || opts.AmountFloor < 0 {
		return nil, graph.NewValidationError("outlier multiplier and floor must not be negative")
	}

	cypher := fmt.Sprintf(`
		MATCH (a:%[1]s)<-[:%[2]s]-(h:%[3]s)
		WITH a, avg(h.%[4]s) AS computedAverage
		MATCH (c:%[5]s)-[:%[6]s]->(a)<-[:%[2]s]-(t:%[3]s)
		WITH c, a, t, coalesce(a.%[7]s, computedAverage) AS baseline
		WHERE t.%[4]s > $multiplier * baseline OR t.%[4]s > $amountFloor
		MATCH (t)-[:%[8]s]->(l:%[9]s)
		OPTIONAL MATCH (t)-[:%[10]s]->(d:%[11]s)
		RETURN c, a, t, l, d, baseline
		ORDER BY t.%[4]s DESC, t.%[12]s DESC
		LIMIT $limit`,
		schema.LabelAccount, schema.RelFrom, schema.LabelTransaction, schema.PropAmount,
		schema.LabelClient, schema.RelOwns, schema.PropAverageTransactionAmount,
		schema.RelOccurredAt, schema.LabelLocation, schema.RelMadeFrom, schema.LabelDevice,
		schema.PropRiskScore)

	records, err := e.read(ctx, AlgOutlierAmounts, cypher, map[string]any{
		"multiplier":  opts.Multiplier,
		"amountFloor": opts.AmountFloor,
		"limit":       int64(e.defaults.ResultLimit),
	})
	if err != nil {
		return nil, err
	}

	out := make([]OutlierTransaction, 0, len(records))
	for _, r := range records {
		tx := projection(r, "t")
		amount, ok := graph.AsFloat(tx[schema.PropAmount])
		if !ok {
			continue
		}
		baseline := optionalNumber(r, "baseline")
		if baseline == nil {
			// Without a baseline only the floor applies, as in the query.
			if amount <= opts.AmountFloor {
				continue
			}
		} else if !IsOutlierAmount(amount, *baseline, opts) {
			continue
		}
		out = append(out, OutlierTransaction{
			Client:          projection(r, "c"),
			Account:         projection(r, "a"),
			Transaction:     tx,
			Location:        projection(r, "l"),
			Device:          projection(r, "d"),
			BaselineAverage: number(r, "baseline"),
		})
	}
	return out, nil
}
