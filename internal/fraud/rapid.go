package fraud

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

// Rapid-succession defaults.
const (
	DefaultMinTransactions   = 3
	DefaultTimeWindowMinutes = 60
)

// RapidOptions sizes the sliding window. A zero field takes the engine default.
type RapidOptions struct {
	// MinTransactions is the window size in consecutive transactions.
	MinTransactions int `json:"minTransactions" mapstructure:"min_transactions"`
	// TimeWindowMinutes is the longest span a window may cover.
	TimeWindowMinutes int `json:"timeWindowMinutes" mapstructure:"time_window_minutes"`
}

func (o RapidOptions) withDefaults(d RapidOptions) RapidOptions {
	if o.MinTransactions == 0 {
		o.MinTransactions = d.MinTransactions
	}
	if o.TimeWindowMinutes == 0 {
		o.TimeWindowMinutes = d.TimeWindowMinutes
	}
	return o
}

// RapidWindow is one run of transactions that happened too quickly.
type RapidWindow struct {
	Start        time.Time          `json:"start"`
	End          time.Time          `json:"end"`
	SpanMinutes  float64            `json:"spanMinutes"`
	Transactions []graph.Projection `json:"transactions"`
}

// RapidSuccession reports every window of opts.MinTransactions consecutive
// outgoing transactions of the account that spans at most
// opts.TimeWindowMinutes. Transactions without a usable date are skipped.
// An unknown account yields no windows.
func (e *Engine) RapidSuccession(ctx context.Context, accountID string, opts RapidOptions) ([]RapidWindow, error) {
	aid, err := graph.ParseID(accountID)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults(e.defaults.Rapid)
	if opts.MinTransactions < 2 {
		return nil, graph.NewValidationError("minimum transactions must be at least 2")
	}
	if opts.TimeWindowMinutes < 0 {
		return nil, graph.NewValidationError("time window must not be negative")
	}

	// Ordering happens in Go: dates the store cannot parse must not fail the read.
	cypher := fmt.Sprintf(`
		MATCH (a:%s)<-[:%s]-(t:%s)
		WHERE id(a) = $accountId
		RETURN t`,
		schema.LabelAccount, schema.RelFrom, schema.LabelTransaction)

	records, err := e.read(ctx, AlgRapidSuccession, cypher, map[string]any{"accountId": int64(aid)})
	if err != nil {
		return nil, err
	}

	type dated struct {
		at time.Time
		tx graph.Projection
	}
	txs := make([]dated, 0, len(records))
	for _, r := range records {
		tx := projection(r, "t")
		if tx == nil {
			continue
		}
		at, ok := graph.AsTime(tx[schema.PropDate])
		if !ok {
			continue
		}
		txs = append(txs, dated{at: at, tx: tx})
	}
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].at.Before(txs[j].at) })

	times := make([]time.Time, len(txs))
	for i, d := range txs {
		times[i] = d.at
	}

	span := time.Duration(opts.TimeWindowMinutes) * time.Minute
	starts := SlidingWindows(times, opts.MinTransactions, span)
	out := make([]RapidWindow, 0, len(starts))
	for _, i := range starts {
		last := i + opts.MinTransactions - 1
		window := RapidWindow{
			Start:        times[i],
			End:          times[last],
			SpanMinutes:  times[last].Sub(times[i]).Minutes(),
			Transactions: make([]graph.Projection, 0, opts.MinTransactions),
		}
		for _, d := range txs[i : last+1] {
			window.Transactions = append(window.Transactions, d.tx)
		}
		out = append(out, window)
	}
	return out, nil
}
