package entities

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

// DefaultMinAccounts is the FindWithMultipleAccounts threshold.
const DefaultMinAccounts = 3

// Clients provides Client CRUD and finders.
type Clients struct {
	finder
}

// NewClients creates the Client finder set.
func NewClients(exec graph.Executor, opts ...Option) *Clients {
	return &Clients{finder: newFinder(exec, schema.LabelClient, opts)}
}

// ClientAccountCount is a client annotated with how many accounts it owns.
type ClientAccountCount struct {
	Client       graph.Projection `json:"client"`
	AccountCount int64            `json:"accountCount"`
}

// FindByIdentificationNumber looks up a client by its natural key.
func (c *Clients) FindByIdentificationNumber(ctx context.Context, idNumber string) (graph.Projection, bool, error) {
	number, err := requireKey("identification number", idNumber)
	if err != nil {
		return nil, false, err
	}
	cypher := fmt.Sprintf("MATCH (c:%s) WHERE c.%s = $idNumber RETURN c LIMIT 1",
		schema.LabelClient, schema.PropIdentificationNumber)
	return c.readOne(ctx, cypher, "c", map[string]any{"idNumber": number})
}

// FindWithMultipleAccounts returns clients owning at least minAccounts accounts.
func (c *Clients) FindWithMultipleAccounts(ctx context.Context, minAccounts int) ([]ClientAccountCount, error) {
	if minAccounts == 0 {
		minAccounts = DefaultMinAccounts
	}
	if minAccounts < 0 {
		return nil, graph.NewValidationError("minimum accounts must be positive")
	}

	cypher := fmt.Sprintf(`
		MATCH (c:%s)-[:%s]->(a:%s)
		WITH c, count(a) AS accountCount
		WHERE accountCount >= $minAccounts
		RETURN c, accountCount
		ORDER BY accountCount DESC`, schema.LabelClient, schema.RelOwns, schema.LabelAccount)

	records, err := c.read(ctx, cypher, map[string]any{"minAccounts": int64(minAccounts)})
	if err != nil {
		return nil, err
	}
	out := make([]ClientAccountCount, 0, len(records))
	for _, r := range records {
		out = append(out, ClientAccountCount{Client: projection(r, "c"), AccountCount: integer(r, "accountCount")})
	}
	return out, nil
}

// FindByRiskScore returns clients whose risk score lies in [minScore, maxScore],
// highest first.
func (c *Clients) FindByRiskScore(ctx context.Context, minScore, maxScore float64) ([]graph.Projection, error) {
	if err := requireRange("risk score", minScore, maxScore); err != nil {
		return nil, err
	}
	cypher := fmt.Sprintf(`
		MATCH (c:%s)
		WHERE c.%s >= $minScore AND c.%s <= $maxScore
		RETURN c
		ORDER BY c.%s DESC`,
		schema.LabelClient, schema.PropRiskScore, schema.PropRiskScore, schema.PropRiskScore)

	return c.readAll(ctx, cypher, "c", map[string]any{"minScore": minScore, "maxScore": maxScore})
}
