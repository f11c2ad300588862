package entities

import (
	"context"
	"fmt"
	"time"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

// Transaction finder defaults and bounds.
const (
	DefaultSuspiciousAmount = 10000.0
	DefaultSuspiciousRisk   = 0.7
	DefaultCircularMaxDepth = 4
	MinCircularDepth        = 2
	MaxCircularDepth        = 10
	DefaultCircularLimit    = 100
)

// Transactions provides Transaction CRUD and finders.
type Transactions struct {
	finder
}

// NewTransactions creates the Transaction finder set.
func NewTransactions(exec graph.Executor, opts ...Option) *Transactions {
	return &Transactions{finder: newFinder(exec, schema.LabelTransaction, opts)}
}

// Transfer is a transaction with its source and destination accounts.
type Transfer struct {
	Transaction graph.Projection `json:"transaction"`
	From        graph.Projection `json:"from"`
	To          graph.Projection `json:"to"`
}

// SuspiciousTransaction is a transfer with optional device and location context.
type SuspiciousTransaction struct {
	Transfer
	Device   graph.Projection `json:"device,omitempty"`
	Location graph.Projection `json:"location,omitempty"`
}

// Cycle is a chain of transfers that returns to its starting account.
type Cycle struct {
	Account       graph.Projection   `json:"account"`
	Hops          int                `json:"hops"`
	Nodes         []graph.Projection `json:"nodes"`
	Relationships []graph.Projection `json:"relationships"`
}

// FindByTransactionID looks up a transaction by its natural key.
func (t *Transactions) FindByTransactionID(ctx context.Context, transactionID string) (graph.Projection, bool, error) {
	id, err := requireKey("transaction id", transactionID)
	if err != nil {
		return nil, false, err
	}
	cypher := fmt.Sprintf("MATCH (t:%s) WHERE t.%s = $transactionId RETURN t LIMIT 1",
		schema.LabelTransaction, schema.PropTransactionID)
	return t.readOne(ctx, cypher, "t", map[string]any{"transactionId": id})
}

// FindInDateRange returns transactions dated within [start, end], newest first.
func (t *Transactions) FindInDateRange(ctx context.Context, start, end time.Time) ([]graph.Projection, error) {
	if start.IsZero() || end.IsZero() {
		return nil, graph.NewValidationError("start and end dates are required")
	}
	if start.After(end) {
		return nil, graph.NewValidationError("start date is after end date")
	}

	cypher := fmt.Sprintf(`
		MATCH (t:%s)
		WITH t, %s AS at
		WHERE at >= $start AND at <= $end
		RETURN t
		ORDER BY at DESC`, schema.LabelTransaction, schema.DateTimeOf("t."+schema.PropDate))

	return t.readAll(ctx, cypher, "t", map[string]any{"start": start.UTC(), "end": end.UTC()})
}

// FindByAmount returns transactions with amount in [minAmount, maxAmount], largest first.
func (t *Transactions) FindByAmount(ctx context.Context, minAmount, maxAmount float64) ([]graph.Projection, error) {
	if err := requireRange("amount", minAmount, maxAmount); err != nil {
		return nil, err
	}
	cypher := fmt.Sprintf(`
		MATCH (t:%s)
		WHERE t.%[2]s >= $minAmount AND t.%[2]s <= $maxAmount
		RETURN t
		ORDER BY t.%[2]s DESC`, schema.LabelTransaction, schema.PropAmount)

	return t.readAll(ctx, cypher, "t", map[string]any{"minAmount": minAmount, "maxAmount": maxAmount})
}

// FindSuspicious returns transfers of at least threshold or with risk score of
// at least minRisk, riskiest first.
func (t *Transactions) FindSuspicious(ctx context.Context, threshold, minRisk float64) ([]SuspiciousTransaction, error) {
	if threshold == 0 {
		threshold = DefaultSuspiciousAmount
	}
	if minRisk == 0 {
		minRisk = DefaultSuspiciousRisk
	}

	cypher := fmt.Sprintf(`
		MATCH (from:%[1]s)<-[:%[2]s]-(t:%[3]s)-[:%[4]s]->(to:%[1]s)
		WHERE t.%[5]s >= $threshold OR t.%[6]s >= $minRisk
		OPTIONAL MATCH (t)-[:%[7]s]->(d:%[8]s)
		OPTIONAL MATCH (t)-[:%[9]s]->(l:%[10]s)
		RETURN t, from, to, d, l
		ORDER BY t.%[6]s DESC, t.%[5]s DESC`,
		schema.LabelAccount, schema.RelFrom, schema.LabelTransaction, schema.RelTo,
		schema.PropAmount, schema.PropRiskScore,
		schema.RelMadeFrom, schema.LabelDevice, schema.RelOccurredAt, schema.LabelLocation)

	records, err := t.read(ctx, cypher, map[string]any{"threshold": threshold, "minRisk": minRisk})
	if err != nil {
		return nil, err
	}
	out := make([]SuspiciousTransaction, 0, len(records))
	for _, r := range records {
		out = append(out, SuspiciousTransaction{
			Transfer: Transfer{
				Transaction: projection(r, "t"),
				From:        projection(r, "from"),
				To:          projection(r, "to"),
			},
			Device:   projection(r, "d"),
			Location: projection(r, "l"),
		})
	}
	return out, nil
}

// FindBetweenAccounts returns transfers from one account to another, newest first.
func (t *Transactions) FindBetweenAccounts(ctx context.Context, fromID, toID string) ([]Transfer, error) {
	from, err := graph.ParseID(fromID)
	if err != nil {
		return nil, err
	}
	to, err := graph.ParseID(toID)
	if err != nil {
		return nil, err
	}

	cypher := fmt.Sprintf(`
		MATCH (from:%[1]s)<-[:%[2]s]-(t:%[3]s)-[:%[4]s]->(to:%[1]s)
		WHERE id(from) = $fromId AND id(to) = $toId
		WITH t, from, to, %[5]s AS at
		RETURN t, from, to
		ORDER BY at IS NULL, at DESC`,
		schema.LabelAccount, schema.RelFrom, schema.LabelTransaction, schema.RelTo,
		schema.DateTimeOf("t."+schema.PropDate))

	records, err := t.read(ctx, cypher, map[string]any{"fromId": int64(from), "toId": int64(to)})
	if err != nil {
		return nil, err
	}
	out := make([]Transfer, 0, len(records))
	for _, r := range records {
		out = append(out, Transfer{
			Transaction: projection(r, "t"),
			From:        projection(r, "from"),
			To:          projection(r, "to"),
		})
	}
	return out, nil
}

// FindCircular returns chains of up to maxDepth transfers that leave an
// account and come back to it. maxDepth must lie in [MinCircularDepth, MaxCircularDepth].
func (t *Transactions) FindCircular(ctx context.Context, maxDepth int) ([]Cycle, error) {
	if maxDepth == 0 {
		maxDepth = DefaultCircularMaxDepth
	}
	if maxDepth < MinCircularDepth || maxDepth > MaxCircularDepth {
		return nil, graph.NewValidationError(fmt.Sprintf("max depth must be between %d and %d", MinCircularDepth, MaxCircularDepth))
	}

	// Quantifier bounds cannot be parameters; maxDepth is a validated integer.
	cypher := fmt.Sprintf(`
		MATCH path = (a:%[1]s)((:%[1]s)<-[:%[2]s]-(:%[3]s)-[:%[4]s]->(:%[1]s)){%[5]d,%[6]d}(a)
		RETURN a, path, length(path) / 2 AS hops
		ORDER BY hops
		LIMIT $limit`,
		schema.LabelAccount, schema.RelFrom, schema.LabelTransaction, schema.RelTo,
		MinCircularDepth, maxDepth)

	records, err := t.read(ctx, cypher, map[string]any{"limit": int64(DefaultCircularLimit)})
	if err != nil {
		return nil, err
	}
	out := make([]Cycle, 0, len(records))
	for _, r := range records {
		c := Cycle{Account: projection(r, "a"), Hops: int(integer(r, "hops"))}
		if path, ok := r.Value("path").(map[string]any); ok {
			c.Nodes = projectionList(path["nodes"])
			c.Relationships = projectionList(path["relationships"])
		}
		out = append(out, c)
	}
	return out, nil
}

func projectionList(v any) []graph.Projection {
	items, _ := v.([]any)
	out := make([]graph.Projection, 0, len(items))
	for _, item := range items {
		if p, ok := item.(graph.Projection); ok {
			out = append(out, p)
		}
	}
	return out
}
