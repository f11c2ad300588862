package fraud

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

// Layered-laundering defaults.
const (
	DefaultMaxGapDays         = 3
	DefaultMaxAmountDeviation = 0.10
)

// LaunderingOptions bounds how closely the second transfer must follow the first.
// A zero field takes the engine default, so an exact-amount match is
// requested with a tiny deviation such as 1e-9 rather than 0.
type LaunderingOptions struct {
	// MaxGapDays is the longest allowed delay between the two transfers.
	MaxGapDays int `json:"maxGapDays" mapstructure:"max_gap_days"`
	// MaxAmountDeviation is the largest allowed |t1-t2|/t1.
	MaxAmountDeviation float64 `json:"maxAmountDeviation" mapstructure:"max_amount_deviation"`
}

func (o LaunderingOptions) withDefaults(d LaunderingOptions) LaunderingOptions {
	if o.MaxGapDays == 0 {
		o.MaxGapDays = d.MaxGapDays
	}
	if o.MaxAmountDeviation == 0 {
		o.MaxAmountDeviation = d.MaxAmountDeviation
	}
	return o
}

func (o LaunderingOptions) validate() error {
	if o.MaxGapDays < 0 {
		return graph.NewValidationError("max gap days must not be negative")
	}
	if o.MaxAmountDeviation < 0 || o.MaxAmountDeviation > 1 {
		return graph.NewValidationError("max amount deviation must lie in [0, 1]")
	}
	return nil
}

// LaunderingChain is value passed from one client through an intermediate
// account and re-emitted nearly intact to a different client.
type LaunderingChain struct {
	OriginClient        graph.Projection `json:"originClient"`
	SourceAccount       graph.Projection `json:"sourceAccount"`
	FirstTransaction    graph.Projection `json:"firstTransaction"`
	IntermediateAccount graph.Projection `json:"intermediateAccount"`
	IntermediateClient  graph.Projection `json:"intermediateClient"`
	SecondTransaction   graph.Projection `json:"secondTransaction"`
	DestinationAccount  graph.Projection `json:"destinationAccount"`
	DestinationClient   graph.Projection `json:"destinationClient"`
}

// IsLayeredPair reports whether a transfer of amount1 at t1 followed by a
// transfer of amount2 at t2 out of the receiving account forms a layering hop.
// The first amount must be positive and t2 must not precede t1.
func IsLayeredPair(amount1 float64, t1 time.Time, amount2 float64, t2 time.Time, opts LaunderingOptions) bool {
	if amount1 <= 0 || t2.Before(t1) {
		return false
	}
	if t2.Sub(t1) > time.Duration(opts.MaxGapDays)*24*time.Hour {
		return false
	}
	return math.Abs(amount1-amount2)/amount1 <= opts.MaxAmountDeviation
}

// LayeredLaundering finds two chained transfers c1 -> a1 -> a2 (c2) -> a3 (c3)
// with c1 != c3 that satisfy IsLayeredPair, largest first transfer first.
func (e *Engine) LayeredLaundering(ctx context.Context, opts LaunderingOptions) ([]LaunderingChain, error) {
	opts = opts.withDefaults(e.defaults.Laundering)
	if err := opts.validate(); err != nil {
		return nil, err
	}

	cypher := fmt.Sprintf(`
		MATCH (c1:%[1]s)-[:%[2]s]->(a1:%[3]s)<-[:%[4]s]-(t1:%[5]s)-[:%[6]s]->(a2:%[3]s)<-[:%[2]s]-(c2:%[1]s),
		      (a2)<-[:%[4]s]-(t2:%[5]s)-[:%[6]s]->(a3:%[3]s)<-[:%[2]s]-(c3:%[1]s)
		WHERE id(c1) <> id(c3) AND t1 <> t2 AND t1.%[7]s > 0
		WITH c1, a1, t1, a2, c2, t2, a3, c3, %[8]s AS d1, %[9]s AS d2
		WHERE d1 <= d2
		  AND duration.inSeconds(d1, d2).seconds <= $maxGapSeconds
		  AND abs(t1.%[7]s - t2.%[7]s) / t1.%[7]s <= $maxDeviation
		RETURN c1, a1, t1, a2, c2, t2, a3, c3, d1 AS firstAt, d2 AS secondAt
		ORDER BY t1.%[7]s DESC
		LIMIT $limit`,
		schema.LabelClient, schema.RelOwns, schema.LabelAccount, schema.RelFrom,
		schema.LabelTransaction, schema.RelTo, schema.PropAmount,
		schema.DateTimeOf("t1."+schema.PropDate), schema.DateTimeOf("t2."+schema.PropDate))

	records, err := e.read(ctx, AlgLayeredLaundering, cypher, map[string]any{
		"maxGapSeconds": int64(opts.MaxGapDays) * 86400,
		"maxDeviation":  opts.MaxAmountDeviation,
		"limit":         int64(e.defaults.ResultLimit),
	})
	if err != nil {
		return nil, err
	}

	out := make([]LaunderingChain, 0, len(records))
	for _, r := range records {
		if !layeredRow(r, opts) {
			continue
		}
		out = append(out, LaunderingChain{
			OriginClient:        projection(r, "c1"),
			SourceAccount:       projection(r, "a1"),
			FirstTransaction:    projection(r, "t1"),
			IntermediateAccount: projection(r, "a2"),
			IntermediateClient:  projection(r, "c2"),
			SecondTransaction:   projection(r, "t2"),
			DestinationAccount:  projection(r, "a3"),
			DestinationClient:   projection(r, "c3"),
		})
	}
	return out, nil
}

// layeredRow applies IsLayeredPair to the amounts and the datetimes the store
// compared, so a row only survives if both sides agree on the rule.
func layeredRow(r graph.Record, opts LaunderingOptions) bool {
	amount1, ok1 := graph.AsFloat(projection(r, "t1")[schema.PropAmount])
	amount2, ok2 := graph.AsFloat(projection(r, "t2")[schema.PropAmount])
	at1, ok3 := graph.AsTime(r.Value("firstAt"))
	at2, ok4 := graph.AsTime(r.Value("secondAt"))
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return IsLayeredPair(amount1, at1, amount2, at2, opts)
}
