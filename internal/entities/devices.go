package entities

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

// Device finder defaults.
const (
	DefaultMinDeviceClients   = 2
	DefaultMinDeviceLocations = 3
)

// Devices provides Device CRUD and finders.
type Devices struct {
	finder
}

// NewDevices creates the Device finder set.
func NewDevices(exec graph.Executor, opts ...Option) *Devices {
	return &Devices{finder: newFinder(exec, schema.LabelDevice, opts)}
}

// DeviceClientCount is a device annotated with the distinct clients using it.
type DeviceClientCount struct {
	Device      graph.Projection `json:"device"`
	ClientCount int64            `json:"clientCount"`
}

// DeviceLocationCount is a device annotated with the distinct locations it was used from.
type DeviceLocationCount struct {
	Device        graph.Projection `json:"device"`
	LocationCount int64            `json:"locationCount"`
}

// FindByDeviceID looks up a device by its natural key.
func (d *Devices) FindByDeviceID(ctx context.Context, deviceID string) (graph.Projection, bool, error) {
	id, err := requireKey("device id", deviceID)
	if err != nil {
		return nil, false, err
	}
	cypher := fmt.Sprintf("MATCH (d:%s) WHERE d.%s = $deviceId RETURN d LIMIT 1",
		schema.LabelDevice, schema.PropDeviceID)
	return d.readOne(ctx, cypher, "d", map[string]any{"deviceId": id})
}

// FindUsedByMultipleClients returns devices whose transactions originate from
// accounts of at least minClients distinct clients.
func (d *Devices) FindUsedByMultipleClients(ctx context.Context, minClients int) ([]DeviceClientCount, error) {
	if minClients == 0 {
		minClients = DefaultMinDeviceClients
	}
	if minClients < 0 {
		return nil, graph.NewValidationError("minimum clients must be positive")
	}

	cypher := fmt.Sprintf(`
		MATCH (d:%s)<-[:%s]-(t:%s)-[:%s]->(a:%s)<-[:%s]-(c:%s)
		WITH d, count(DISTINCT c) AS clientCount
		WHERE clientCount >= $minClients
		RETURN d, clientCount
		ORDER BY clientCount DESC`,
		schema.LabelDevice, schema.RelMadeFrom, schema.LabelTransaction, schema.RelFrom,
		schema.LabelAccount, schema.RelOwns, schema.LabelClient)

	records, err := d.read(ctx, cypher, map[string]any{"minClients": int64(minClients)})
	if err != nil {
		return nil, err
	}
	out := make([]DeviceClientCount, 0, len(records))
	for _, r := range records {
		out = append(out, DeviceClientCount{Device: projection(r, "d"), ClientCount: integer(r, "clientCount")})
	}
	return out, nil
}

// FindWithManyLocations returns devices used from at least minLocations distinct locations.
func (d *Devices) FindWithManyLocations(ctx context.Context, minLocations int) ([]DeviceLocationCount, error) {
	if minLocations == 0 {
		minLocations = DefaultMinDeviceLocations
	}
	if minLocations < 0 {
		return nil, graph.NewValidationError("minimum locations must be positive")
	}

	cypher := fmt.Sprintf(`
		MATCH (d:%s)<-[:%s]-(t:%s)-[:%s]->(l:%s)
		WITH d, count(DISTINCT l) AS locationCount
		WHERE locationCount >= $minLocations
		RETURN d, locationCount
		ORDER BY locationCount DESC`,
		schema.LabelDevice, schema.RelMadeFrom, schema.LabelTransaction, schema.RelOccurredAt, schema.LabelLocation)

	records, err := d.read(ctx, cypher, map[string]any{"minLocations": int64(minLocations)})
	if err != nil {
		return nil, err
	}
	out := make([]DeviceLocationCount, 0, len(records))
	for _, r := range records {
		out = append(out, DeviceLocationCount{Device: projection(r, "d"), LocationCount: integer(r, "locationCount")})
	}
	return out, nil
}
