package fraud

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

// Activity-acceleration defaults.
const (
	DefaultAccelerationDays  = 30
	DefaultIncreaseThreshold = 200.0
)

// AccelerationOptions sets the trailing window and the growth threshold. A zero
// field takes the engine default.
type AccelerationOptions struct {
	// Days is the trailing window length.
	Days int `json:"days" mapstructure:"days"`
	// IncreaseThreshold is the percentage of the lifetime rate the recent rate must exceed.
	IncreaseThreshold float64 `json:"increaseThreshold" mapstructure:"increase_threshold"`
}

func (o AccelerationOptions) withDefaults(d AccelerationOptions) AccelerationOptions {
	if o.Days == 0 {
		o.Days = d.Days
	}
	if o.IncreaseThreshold == 0 {
		o.IncreaseThreshold = d.IncreaseThreshold
	}
	return o
}

// AcceleratingAccount is an account whose recent activity outpaces its history.
type AcceleratingAccount struct {
	Account                 graph.Projection `json:"account"`
	TotalTransactions       int64            `json:"totalTransactions"`
	RecentTransactions      int64            `json:"recentTransactions"`
	PastAvgAmount           *float64         `json:"pastAvgAmount"`
	RecentAvgAmount         *float64         `json:"recentAvgAmount"`
	ActivityIncreasePercent float64          `json:"activityIncreasePercent"`
}

// AccelerationPercent compares the recent rate (recent / days, on a 30-day
// basis) with the lifetime rate (total / ageDays, on a 30-day basis). ok is
// false when either rate is undefined, so callers exclude the account.
func AccelerationPercent(total, recent int64, ageDays float64, days int) (percent float64, ok bool) {
	if total <= 0 || ageDays <= 0 || days <= 0 {
		return 0, false
	}
	recentRate := float64(recent) * 30 / float64(days)
	lifetimeRate := float64(total) * 30 / ageDays
	return recentRate * 100 / lifetimeRate, true
}

// ActivityAcceleration returns accounts whose transaction rate over the last
// opts.Days days exceeds opts.IncreaseThreshold percent of their lifetime
// rate. Accounts with no transactions or a non-positive age are excluded
// inside the query; the percentage reported is AccelerationPercent of the
// returned counts.
func (e *Engine) ActivityAcceleration(ctx context.Context, opts AccelerationOptions) ([]AcceleratingAccount, error) {
	opts = opts.withDefaults(e.defaults.Acceleration)
	if opts.Days <= 0 {
		return nil, graph.NewValidationError("days must be positive")
	}
	if opts.IncreaseThreshold < 0 {
		return nil, graph.NewValidationError("increase threshold must not be negative")
	}

	cypher := fmt.Sprintf(`
		MATCH (a:%[1]s)<-[:%[2]s]-(t:%[3]s)
		WITH a, t, %[4]s AS txDate
		WITH a,
		     count(t) AS totalTransactions,
		     count(CASE WHEN txDate >= $since THEN 1 END) AS recentTransactions,
		     avg(CASE WHEN txDate < $since THEN t.%[5]s END) AS pastAvgAmount,
		     avg(CASE WHEN txDate >= $since THEN t.%[5]s END) AS recentAvgAmount
		WHERE totalTransactions > 0 AND recentTransactions > 0
		  AND coalesce(a.%[6]s, 0) > 0
		WITH a, totalTransactions, recentTransactions, pastAvgAmount, recentAvgAmount,
		     toFloat(recentTransactions) * 30.0 / $days AS recentRate,
		     toFloat(totalTransactions) * 30.0 / a.%[6]s AS lifetimeRate
		WITH a, totalTransactions, recentTransactions, pastAvgAmount, recentAvgAmount,
		     recentRate * 100.0 / lifetimeRate AS activityIncreasePercent
		WHERE activityIncreasePercent > $increaseThreshold
		RETURN a, totalTransactions, recentTransactions, pastAvgAmount, recentAvgAmount, activityIncreasePercent
		ORDER BY activityIncreasePercent DESC
		LIMIT $limit`,
		schema.LabelAccount, schema.RelFrom, schema.LabelTransaction,
		schema.DateTimeOf("t."+schema.PropDate), schema.PropAmount, schema.PropAccountAgeInDays)

	since := e.now().UTC().AddDate(0, 0, -opts.Days)
	records, err := e.read(ctx, AlgActivityAcceleration, cypher, map[string]any{
		"since":             since,
		"days":              float64(opts.Days),
		"increaseThreshold": opts.IncreaseThreshold,
		"limit":             int64(e.defaults.ResultLimit),
	})
	if err != nil {
		return nil, err
	}

	out := make([]AcceleratingAccount, 0, len(records))
	for _, r := range records {
		account := projection(r, "a")
		total, recent := integer(r, "totalTransactions"), integer(r, "recentTransactions")
		age, _ := graph.AsFloat(account[schema.PropAccountAgeInDays])
		percent, ok := AccelerationPercent(total, recent, age, opts.Days)
		if !ok || percent <= opts.IncreaseThreshold {
			continue
		}
		out = append(out, AcceleratingAccount{
			Account:                 account,
			TotalTransactions:       total,
			RecentTransactions:      recent,
			PastAvgAmount:           optionalNumber(r, "pastAvgAmount"),
			RecentAvgAmount:         optionalNumber(r, "recentAvgAmount"),
			ActivityIncreasePercent: percent,
		})
	}
	return out, nil
}
