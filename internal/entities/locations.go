package entities

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

// Location finder defaults.
const (
	DefaultRadius                 = 0.1
	DefaultMinAverageRisk         = 0.7
	DefaultMaxUnusualTransactions = 2
)

// Locations provides Location CRUD and finders.
type Locations struct {
	finder
}

// NewLocations creates the Location finder set.
func NewLocations(exec graph.Executor, opts ...Option) *Locations {
	return &Locations{finder: newFinder(exec, schema.LabelLocation, opts)}
}

// LocationRisk is a location annotated with its transaction risk profile.
type LocationRisk struct {
	Location         graph.Projection `json:"location"`
	TransactionCount int64            `json:"transactionCount"`
	AvgRiskScore     float64          `json:"avgRiskScore"`
}

// LocationUsage is a location annotated with how often a client transacted there.
type LocationUsage struct {
	Location         graph.Projection `json:"location"`
	TransactionCount int64            `json:"transactionCount"`
}

// FindByCoordinates returns locations inside the lat/lon bounding box of
// half-width radius degrees.
func (l *Locations) FindByCoordinates(ctx context.Context, latitude, longitude, radius float64) ([]graph.Projection, error) {
	if radius == 0 {
		radius = DefaultRadius
	}
	if radius < 0 {
		return nil, graph.NewValidationError("radius must be positive")
	}
	if latitude < -90 || latitude > 90 {
		return nil, graph.NewValidationError(fmt.Sprintf("latitude %v out of range", latitude))
	}
	if longitude < -180 || longitude > 180 {
		return nil, graph.NewValidationError(fmt.Sprintf("longitude %v out of range", longitude))
	}

	cypher := fmt.Sprintf(`
		MATCH (l:%s)
		WHERE l.%[2]s >= $latitude - $radius AND l.%[2]s <= $latitude + $radius
		  AND l.%[3]s >= $longitude - $radius AND l.%[3]s <= $longitude + $radius
		RETURN l`, schema.LabelLocation, schema.PropLatitude, schema.PropLongitude)

	return l.readAll(ctx, cypher, "l", map[string]any{
		"latitude":  latitude,
		"longitude": longitude,
		"radius":    radius,
	})
}

// FindHighRisk returns locations whose transactions average at least
// minAverageRisk, riskiest first then busiest first.
func (l *Locations) FindHighRisk(ctx context.Context, minAverageRisk float64) ([]LocationRisk, error) {
	if minAverageRisk == 0 {
		minAverageRisk = DefaultMinAverageRisk
	}

	cypher := fmt.Sprintf(`
		MATCH (l:%s)<-[:%s]-(t:%s)
		WITH l, count(t) AS transactionCount, avg(t.%s) AS avgRiskScore
		WHERE avgRiskScore >= $minAverageRisk
		RETURN l, transactionCount, avgRiskScore
		ORDER BY avgRiskScore DESC, transactionCount DESC`,
		schema.LabelLocation, schema.RelOccurredAt, schema.LabelTransaction, schema.PropRiskScore)

	records, err := l.read(ctx, cypher, map[string]any{"minAverageRisk": minAverageRisk})
	if err != nil {
		return nil, err
	}
	out := make([]LocationRisk, 0, len(records))
	for _, r := range records {
		out = append(out, LocationRisk{
			Location:         projection(r, "l"),
			TransactionCount: integer(r, "transactionCount"),
			AvgRiskScore:     number(r, "avgRiskScore"),
		})
	}
	return out, nil
}

// FindUnusualForClient returns locations where the client's accounts
// originated at most maxTransactions transactions, rarest first.
func (l *Locations) FindUnusualForClient(ctx context.Context, clientID string, maxTransactions int) ([]LocationUsage, error) {
	cid, err := graph.ParseID(clientID)
	if err != nil {
		return nil, err
	}
	if maxTransactions == 0 {
		maxTransactions = DefaultMaxUnusualTransactions
	}
	if maxTransactions < 0 {
		return nil, graph.NewValidationError("maximum transactions must be positive")
	}

	cypher := fmt.Sprintf(`
		MATCH (c:%s)-[:%s]->(a:%s)<-[:%s]-(t:%s)-[:%s]->(l:%s)
		WHERE id(c) = $clientId
		WITH l, count(t) AS transactionCount
		WHERE transactionCount <= $maxTransactions
		RETURN l, transactionCount
		ORDER BY transactionCount`,
		schema.LabelClient, schema.RelOwns, schema.LabelAccount, schema.RelFrom,
		schema.LabelTransaction, schema.RelOccurredAt, schema.LabelLocation)

	records, err := l.read(ctx, cypher, map[string]any{
		"clientId":        int64(cid),
		"maxTransactions": int64(maxTransactions),
	})
	if err != nil {
		return nil, err
	}
	out := make([]LocationUsage, 0, len(records))
	for _, r := range records {
		out = append(out, LocationUsage{Location: projection(r, "l"), TransactionCount: integer(r, "transactionCount")})
	}
	return out, nil
}
