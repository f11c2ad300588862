package entities

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

// Account finder defaults.
const (
	DefaultBalanceChangePercent = 50.0
	DefaultBalanceChangeDays    = 30
	DefaultRecentCreationDays   = 90
)

// Accounts provides Account CRUD and finders.
type Accounts struct {
	finder
}

// NewAccounts creates the Account finder set.
func NewAccounts(exec graph.Executor, opts ...Option) *Accounts {
	return &Accounts{finder: newFinder(exec, schema.LabelAccount, opts)}
}

// AccountWithOwner pairs an account with its owning client.
type AccountWithOwner struct {
	Account graph.Projection `json:"account"`
	Owner   graph.Projection `json:"owner"`
}

// FindByAccountNumber looks up an account by its natural key.
func (a *Accounts) FindByAccountNumber(ctx context.Context, accountNumber string) (graph.Projection, bool, error) {
	number, err := requireKey("account number", accountNumber)
	if err != nil {
		return nil, false, err
	}
	cypher := fmt.Sprintf("MATCH (a:%s) WHERE a.%s = $accountNumber RETURN a LIMIT 1",
		schema.LabelAccount, schema.PropAccountNumber)
	return a.readOne(ctx, cypher, "a", map[string]any{"accountNumber": number})
}

// FindWithOwner returns every account that has an owning client.
func (a *Accounts) FindWithOwner(ctx context.Context) ([]AccountWithOwner, error) {
	cypher := fmt.Sprintf("MATCH (c:%s)-[:%s]->(a:%s) RETURN a, c",
		schema.LabelClient, schema.RelOwns, schema.LabelAccount)
	records, err := a.read(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	out := make([]AccountWithOwner, 0, len(records))
	for _, r := range records {
		out = append(out, AccountWithOwner{Account: projection(r, "a"), Owner: projection(r, "c")})
	}
	return out, nil
}

// FindWithHighBalanceChange returns accounts whose balance moved by at least
// percentChange within the last days days, largest change first.
func (a *Accounts) FindWithHighBalanceChange(ctx context.Context, percentChange float64, days int) ([]graph.Projection, error) {
	if percentChange == 0 {
		percentChange = DefaultBalanceChangePercent
	}
	if days == 0 {
		days = DefaultBalanceChangeDays
	}
	if days < 0 {
		return nil, graph.NewValidationError("days must be positive")
	}

	cypher := fmt.Sprintf(`
		MATCH (a:%s)
		WHERE a.%s >= $percentChange
		WITH a, %s AS changedAt
		WHERE changedAt >= $since
		RETURN a
		ORDER BY a.%s DESC`,
		schema.LabelAccount, schema.PropBalanceChangePercent,
		schema.DateTimeOf("a."+schema.PropLastBalanceChangeDate), schema.PropBalanceChangePercent)

	return a.readAll(ctx, cypher, "a", map[string]any{
		"percentChange": percentChange,
		"since":         a.since(days),
	})
}

// FindRecentlyCreated returns accounts opened within the last days days, newest first.
func (a *Accounts) FindRecentlyCreated(ctx context.Context, days int) ([]graph.Projection, error) {
	if days == 0 {
		days = DefaultRecentCreationDays
	}
	if days < 0 {
		return nil, graph.NewValidationError("days must be positive")
	}

	cypher := fmt.Sprintf(`
		MATCH (a:%s)
		WITH a, %s AS createdAt
		WHERE createdAt >= $since
		RETURN a
		ORDER BY createdAt DESC`, schema.LabelAccount, schema.DateTimeOf("a."+schema.PropCreationDate))

	return a.readAll(ctx, cypher, "a", map[string]any{"since": a.since(days)})
}
