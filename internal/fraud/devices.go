package fraud

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

// DefaultMinClients is the number of distinct clients that makes a device shared.
const DefaultMinClients = 2

// SharedDevice is a device whose transactions originate from several clients.
type SharedDevice struct {
	Device           graph.Projection   `json:"device"`
	Clients          []graph.Projection `json:"clients"`
	ClientCount      int64              `json:"clientCount"`
	TransactionCount int64              `json:"transactionCount"`
}

// SharedDevices returns devices used by at least minClients distinct owning
// clients, ordered by client count then transaction count. Zero takes the
// engine default.
func (e *Engine) SharedDevices(ctx context.Context, minClients int) ([]SharedDevice, error) {
	if minClients == 0 {
		minClients = e.defaults.MinClients
	}
	if minClients < 2 {
		return nil, graph.NewValidationError("minimum clients must be at least 2")
	}

	cypher := fmt.Sprintf(`
		MATCH (d:%s)<-[:%s]-(t:%s)-[:%s]->(:%s)<-[:%s]-(c:%s)
		WITH d, collect(DISTINCT c) AS clients, count(DISTINCT t) AS transactionCount
		WHERE size(clients) >= $minClients
		RETURN d, clients, size(clients) AS clientCount, transactionCount
		ORDER BY clientCount DESC, transactionCount DESC
		LIMIT $limit`,
		schema.LabelDevice, schema.RelMadeFrom, schema.LabelTransaction, schema.RelFrom,
		schema.LabelAccount, schema.RelOwns, schema.LabelClient)

	records, err := e.read(ctx, AlgSharedDevices, cypher, map[string]any{
		"minClients": int64(minClients),
		"limit":      int64(e.defaults.ResultLimit),
	})
	if err != nil {
		return nil, err
	}

	out := make([]SharedDevice, 0, len(records))
	for _, r := range records {
		clients := []graph.Projection{}
		if items, ok := r.Value("clients").([]any); ok {
			for _, item := range items {
				if p, ok := item.(graph.Projection); ok {
					clients = append(clients, p)
				}
			}
		}
		out = append(out, SharedDevice{
			Device:           projection(r, "d"),
			Clients:          clients,
			ClientCount:      integer(r, "clientCount"),
			TransactionCount: integer(r, "transactionCount"),
		})
	}
	return out, nil
}
