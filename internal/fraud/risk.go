package fraud

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

// RiskCategory is one band of the risk-score partition.
type RiskCategory struct {
	Name string
	// Min is the inclusive lower bound of the band.
	Min float64
}

// Risk category names.
const (
	RiskVeryHigh = "Very High"
	RiskHigh     = "High"
	RiskMedium   = "Medium"
	RiskLow      = "Low"
	RiskVeryLow  = "Very Low"
)

// riskCategories is ordered from highest to lowest; the last band has no
// lower bound so the partition covers every score, including missing ones.
var riskCategories = []RiskCategory{
	{Name: RiskVeryHigh, Min: 0.8},
	{Name: RiskHigh, Min: 0.6},
	{Name: RiskMedium, Min: 0.4},
	{Name: RiskLow, Min: 0.2},
	{Name: RiskVeryLow, Min: math.Inf(-1)},
}

// RiskCategories returns the partition, highest band first.
func RiskCategories() []RiskCategory {
	out := make([]RiskCategory, len(riskCategories))
	copy(out, riskCategories)
	return out
}

// CategorizeRisk returns the band a score falls into.
func CategorizeRisk(score float64) string {
	for _, c := range riskCategories {
		if score >= c.Min {
			return c.Name
		}
	}
	return RiskVeryLow
}

// riskCaseExpr renders the partition as a Cypher CASE over expr.
func riskCaseExpr(expr string) string {
	var b strings.Builder
	b.WriteString("CASE")
	last := len(riskCategories) - 1
	for _, c := range riskCategories[:last] {
		fmt.Fprintf(&b, " WHEN %s >= %s THEN '%s'", expr, strconv.FormatFloat(c.Min, 'f', -1, 64), c.Name)
	}
	fmt.Fprintf(&b, " ELSE '%s' END", riskCategories[last].Name)
	return b.String()
}

// RiskBucket aggregates the transactions of one risk band.
type RiskBucket struct {
	Category         string  `json:"riskCategory"`
	TransactionCount int64   `json:"transactionCount"`
	TotalAmount      float64 `json:"totalAmount"`
	AvgAmount        float64 `json:"avgAmount"`
	MinAmount        float64 `json:"minAmount"`
	MaxAmount        float64 `json:"maxAmount"`
}

// RiskBuckets aggregates every transaction into the five risk bands. The
// result always holds all five bands in order, Very High first; bands with no
// transactions have zero values.
func (e *Engine) RiskBuckets(ctx context.Context) ([]RiskBucket, error) {
	cypher := fmt.Sprintf(`
		MATCH (t:%s)
		WITH t, %s AS riskCategory
		RETURN riskCategory,
		       count(t) AS transactionCount,
		       sum(t.%[3]s) AS totalAmount,
		       avg(t.%[3]s) AS avgAmount,
		       min(t.%[3]s) AS minAmount,
		       max(t.%[3]s) AS maxAmount`,
		schema.LabelTransaction, riskCaseExpr("t."+schema.PropRiskScore), schema.PropAmount)

	records, err := e.read(ctx, AlgRiskBuckets, cypher, nil)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]RiskBucket, len(records))
	for _, r := range records {
		name, _ := r.Value("riskCategory").(string)
		byName[name] = RiskBucket{
			Category:         name,
			TransactionCount: integer(r, "transactionCount"),
			TotalAmount:      number(r, "totalAmount"),
			AvgAmount:        number(r, "avgAmount"),
			MinAmount:        number(r, "minAmount"),
			MaxAmount:        number(r, "maxAmount"),
		}
	}

	out := make([]RiskBucket, 0, len(riskCategories))
	for _, c := range riskCategories {
		bucket, ok := byName[c.Name]
		if !ok {
			bucket = RiskBucket{Category: c.Name}
		}
		out = append(out, bucket)
	}
	return out, nil
}
