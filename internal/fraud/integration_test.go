//go:build integration

package fraud

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
)

func liveClient(t *testing.T) *graph.Neo4jClient {
	t.Helper()
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}
	cfg := graph.DefaultConfig()
	cfg.URI = uri
	if user := os.Getenv("NEO4J_USER"); user != "" {
		cfg.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		cfg.Password = pass
	}
	cfg.ConnectRetries = 1

	client, err := graph.NewNeo4jClient(cfg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(ctx))
	t.Cleanup(func() { _ = client.Close(context.Background()) })
	return client
}

// seed creates two clients owning one account each, both transacting from a
// single device. The first account sends four transfers ten minutes apart.
func seed(t *testing.T, client *graph.Neo4jClient, run string) (accountID string, deviceID string) {
	t.Helper()
	row := create(t, client, `
		CREATE (c1:Client {name: 'One', testRun: $run})-[:OWNS]->(a1:Account {accountNumber: $run + '-1', testRun: $run})
		CREATE (c2:Client {name: 'Two', testRun: $run})-[:OWNS]->(a2:Account {accountNumber: $run + '-2', testRun: $run})
		CREATE (d:Device {deviceId: $run, testRun: $run})
		WITH a1, a2, d
		UNWIND range(0, 3) AS i
		CREATE (t:Transaction {amount: 100.0 + i, date: datetime('2024-05-01T09:00:00Z') + duration({minutes: 10 * i}), testRun: $run})
		CREATE (t)-[:FROM]->(a1)
		CREATE (t)-[:TO]->(a2)
		CREATE (t)-[:MADE_FROM]->(d)
		WITH a2, d, a1
		LIMIT 1
		CREATE (t2:Transaction {amount: 50.0, date: datetime('2024-05-02T09:00:00Z'), testRun: $run})
		CREATE (t2)-[:FROM]->(a2)
		CREATE (t2)-[:MADE_FROM]->(d)
		RETURN toString(id(a1)) AS account, toString(id(d)) AS device`,
		map[string]any{"run": run})
	return row.Value("account").(string), row.Value("device").(string)
}

// newRun returns a fresh run tag whose nodes are removed when the test ends.
func newRun(t *testing.T, client *graph.Neo4jClient) string {
	t.Helper()
	run := uuid.NewString()
	t.Cleanup(func() {
		_, _ = client.Execute(context.Background(), "MATCH (n {testRun: $run}) DETACH DELETE n", map[string]any{"run": run})
	})
	return run
}

// create runs a seeding statement and returns its single row.
func create(t *testing.T, client *graph.Neo4jClient, cypher string, params map[string]any) graph.Record {
	t.Helper()
	records, err := client.Execute(context.Background(), cypher, params)
	require.NoError(t, err)
	require.Len(t, records, 1)
	return records[0]
}

func TestIntegration_Detection(t *testing.T) {
	client := liveClient(t)
	run := newRun(t, client)
	accountID, deviceID := seed(t, client, run)
	engine := NewEngine(client)
	ctx := context.Background()

	windows, err := engine.RapidSuccession(ctx, accountID, RapidOptions{MinTransactions: 3, TimeWindowMinutes: 20})
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.InDelta(t, 20.0, windows[0].SpanMinutes, 0.001)

	devices, err := engine.SharedDevices(ctx, 2)
	require.NoError(t, err)
	var hit *SharedDevice
	for i := range devices {
		if devices[i].Device.ID() == deviceID {
			hit = &devices[i]
		}
	}
	require.NotNil(t, hit, "seeded device should be reported as shared")
	assert.Equal(t, int64(2), hit.ClientCount)

	buckets, err := engine.RiskBuckets(ctx)
	require.NoError(t, err)
	assert.Len(t, buckets, len(RiskCategories()))
}

func TestIntegration_LayeredLaundering(t *testing.T) {
	client := liveClient(t)
	run := newRun(t, client)
	row := create(t, client, `
		CREATE (c1:Client {testRun: $run})-[:OWNS]->(a1:Account {testRun: $run})
		CREATE (c2:Client {testRun: $run})-[:OWNS]->(a2:Account {testRun: $run})
		CREATE (c3:Client {testRun: $run})-[:OWNS]->(a3:Account {testRun: $run})
		CREATE (c4:Client {testRun: $run})-[:OWNS]->(a4:Account {testRun: $run})
		CREATE (inbound:Transaction {amount: 10000.0, date: '2024-03-01T10:00:00Z', testRun: $run})-[:FROM]->(a1)
		CREATE (inbound)-[:TO]->(a2)
		CREATE (kept:Transaction {amount: 9500.0, date: '2024-03-02T10:00:00Z', testRun: $run})-[:FROM]->(a2)
		CREATE (kept)-[:TO]->(a3)
		CREATE (skimmed:Transaction {amount: 8000.0, date: '2024-03-02T11:00:00Z', testRun: $run})-[:FROM]->(a2)
		CREATE (skimmed)-[:TO]->(a4)
		CREATE (garbled:Transaction {amount: 9900.0, date: 'sometime in march', testRun: $run})-[:FROM]->(a2)
		CREATE (garbled)-[:TO]->(a4)
		RETURN toString(id(kept)) AS kept, toString(id(skimmed)) AS skimmed, toString(id(garbled)) AS garbled`,
		map[string]any{"run": run})

	chains, err := NewEngine(client).LayeredLaundering(context.Background(), LaunderingOptions{})
	require.NoError(t, err, "a malformed date must not fail the query")

	var seconds []string
	for _, c := range chains {
		seconds = append(seconds, c.SecondTransaction.ID())
	}
	assert.Contains(t, seconds, row.Value("kept"))
	assert.NotContains(t, seconds, row.Value("skimmed"))
	assert.NotContains(t, seconds, row.Value("garbled"))
}

func TestIntegration_OutlierAmounts(t *testing.T) {
	client := liveClient(t)
	run := newRun(t, client)
	row := create(t, client, `
		CREATE (c:Client {testRun: $run})-[:OWNS]->(a:Account {averageTransactionAmount: 100.0, testRun: $run})
		CREATE (l:Location {testRun: $run})
		CREATE (big:Transaction {amount: 500.0, testRun: $run})-[:FROM]->(a)
		CREATE (big)-[:OCCURRED_AT]->(l)
		CREATE (usual:Transaction {amount: 200.0, testRun: $run})-[:FROM]->(a)
		CREATE (usual)-[:OCCURRED_AT]->(l)
		CREATE (nowhere:Transaction {amount: 900.0, testRun: $run})-[:FROM]->(a)
		RETURN toString(id(big)) AS big, toString(id(usual)) AS usual, toString(id(nowhere)) AS nowhere`,
		map[string]any{"run": run})

	outliers, err := NewEngine(client).OutlierAmounts(context.Background(), OutlierOptions{})
	require.NoError(t, err)

	var found []string
	for _, o := range outliers {
		found = append(found, o.Transaction.ID())
	}
	assert.Contains(t, found, row.Value("big"))
	assert.NotContains(t, found, row.Value("usual"))
	assert.NotContains(t, found, row.Value("nowhere"), "transactions without a location are not reported")
}

func TestIntegration_ActivityAcceleration(t *testing.T) {
	client := liveClient(t)
	run := newRun(t, client)
	row := create(t, client, `
		CREATE (busy:Account {accountAgeInDays: 360, testRun: $run})
		CREATE (fresh:Account {accountAgeInDays: 0, testRun: $run})
		CREATE (ageless:Account {testRun: $run})
		CREATE (idle:Account {accountAgeInDays: 360, testRun: $run})
		WITH busy, fresh, ageless, idle
		UNWIND range(1, 12) AS i
		CREATE (t:Transaction {amount: 10.0, testRun: $run,
			date: toString(datetime() - duration({days: CASE WHEN i <= 6 THEN i ELSE 100 + i * 20 END}))})
		CREATE (t)-[:FROM]->(busy)
		WITH DISTINCT busy, fresh, ageless, idle
		CREATE (:Transaction {amount: 10.0, date: toString(datetime()), testRun: $run})-[:FROM]->(fresh)
		CREATE (:Transaction {amount: 10.0, date: toString(datetime()), testRun: $run})-[:FROM]->(ageless)
		CREATE (:Transaction {amount: 10.0, date: 'yesterday-ish', testRun: $run})-[:FROM]->(busy)
		RETURN toString(id(busy)) AS busy, toString(id(fresh)) AS fresh,
		       toString(id(ageless)) AS ageless, toString(id(idle)) AS idle`,
		map[string]any{"run": run})

	accounts, err := NewEngine(client).ActivityAcceleration(context.Background(), AccelerationOptions{})
	require.NoError(t, err, "zero ages and malformed dates must not fail the query")

	byID := map[string]AcceleratingAccount{}
	for _, a := range accounts {
		byID[a.Account.ID()] = a
	}
	busy, ok := byID[row.Value("busy").(string)]
	require.True(t, ok)
	assert.Equal(t, int64(13), busy.TotalTransactions)
	assert.Equal(t, int64(6), busy.RecentTransactions)
	expected, _ := AccelerationPercent(13, 6, 360, DefaultAccelerationDays)
	assert.InDelta(t, expected, busy.ActivityIncreasePercent, 1e-6)

	for _, key := range []string{"fresh", "ageless", "idle"} {
		assert.NotContains(t, byID, row.Value(key).(string), key)
	}
}

func TestIntegration_RapidSuccessionMalformedDate(t *testing.T) {
	client := liveClient(t)
	run := newRun(t, client)
	row := create(t, client, `
		CREATE (a:Account {testRun: $run})
		WITH a
		UNWIND ['2024-05-01T09:00:00Z', '2024-05-01T09:05:00Z', 'garbage', '2024-05-01T09:12:00Z'] AS date
		CREATE (:Transaction {date: date, amount: 1.0, testRun: $run})-[:FROM]->(a)
		WITH DISTINCT a
		RETURN toString(id(a)) AS account`,
		map[string]any{"run": run})

	windows, err := NewEngine(client).RapidSuccession(context.Background(), row.Value("account").(string),
		RapidOptions{MinTransactions: 3, TimeWindowMinutes: 60})
	require.NoError(t, err)
	require.Len(t, windows, 1)
	var dates []string
	for _, tx := range windows[0].Transactions {
		dates = append(dates, tx["date"].(string))
	}
	assert.Equal(t, []string{"2024-05-01T09:00:00Z", "2024-05-01T09:05:00Z", "2024-05-01T09:12:00Z"}, dates)
}
