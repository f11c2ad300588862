package entities

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
)

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func node(id graph.ID, label string, props map[string]any) graph.Node {
	if props == nil {
		props = map[string]any{}
	}
	return graph.Node{ID: id, Labels: []string{label}, Props: props}
}

func TestAccounts_FindByAccountNumber(t *testing.T) {
	mock := graph.NewMockExecutor()
	accounts := NewAccounts(mock)
	mock.AddRows(graph.NewRow("a", node(1, "Account", map[string]any{"accountNumber": "ACC-1"})))
	mock.AddRows()

	acc, found, err := accounts.FindByAccountNumber(context.Background(), " ACC-1 ")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ACC-1", acc["accountNumber"])
	call := mock.LastCall()
	assert.Equal(t, "ExecuteRead", call.Method)
	assert.Equal(t, "ACC-1", call.Params["accountNumber"])

	_, found, err = accounts.FindByAccountNumber(context.Background(), "ACC-2")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = accounts.FindByAccountNumber(context.Background(), "")
	assert.True(t, graph.IsValidation(err))
}

func TestAccounts_FindWithOwner(t *testing.T) {
	mock := graph.NewMockExecutor()
	mock.AddRows(graph.NewRow("a", node(1, "Account", nil), "c", node(2, "Client", nil)))

	rows, err := NewAccounts(mock).FindWithOwner(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].Account.ID())
	assert.Equal(t, "2", rows[0].Owner.ID())
	assert.Contains(t, mock.LastCall().Cypher, "(c:Client)-[:OWNS]->(a:Account)")
}

func TestAccounts_TrailingWindows(t *testing.T) {
	mock := graph.NewMockExecutor()
	accounts := NewAccounts(mock, WithClock(clock))
	ctx := context.Background()

	_, err := accounts.FindWithHighBalanceChange(ctx, 0, 0)
	require.NoError(t, err)
	call := mock.LastCall()
	assert.Equal(t, DefaultBalanceChangePercent, call.Params["percentChange"])
	assert.Equal(t, fixedNow.AddDate(0, 0, -DefaultBalanceChangeDays), call.Params["since"])
	assert.Contains(t, call.Cypher, "ORDER BY a.balanceChangePercent DESC")

	_, err = accounts.FindRecentlyCreated(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.AddDate(0, 0, -7), mock.LastCall().Params["since"])

	_, err = accounts.FindRecentlyCreated(ctx, -1)
	assert.True(t, graph.IsValidation(err))
}

func TestAccounts_EmbedsRepository(t *testing.T) {
	mock := graph.NewMockExecutor()
	accounts := NewAccounts(mock)
	mock.AddRows(graph.NewRow("n", node(3, "Account", map[string]any{"accountNumber": "ACC-3"})))

	created, err := accounts.CreateNode(context.Background(), map[string]any{"accountNumber": "ACC-3"})
	require.NoError(t, err)
	assert.Equal(t, "3", created.ID())
	assert.Contains(t, mock.LastCall().Cypher, "CREATE (n:Account)")
}

func TestClients(t *testing.T) {
	mock := graph.NewMockExecutor()
	clients := NewClients(mock)
	ctx := context.Background()

	mock.AddRows(
		graph.NewRow("c", node(1, "Client", nil), "accountCount", int64(5)),
		graph.NewRow("c", node(2, "Client", nil), "accountCount", int64(3)),
	)
	rows, err := clients.FindWithMultipleAccounts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(5), rows[0].AccountCount)
	assert.Equal(t, int64(DefaultMinAccounts), mock.LastCall().Params["minAccounts"])

	mock.AddRows(graph.NewRow("c", node(1, "Client", map[string]any{"riskScore": 0.9})))
	scored, err := clients.FindByRiskScore(ctx, 0.5, 1)
	require.NoError(t, err)
	assert.Len(t, scored, 1)

	_, err = clients.FindByRiskScore(ctx, 0.9, 0.1)
	assert.True(t, graph.IsValidation(err))

	mock.AddRows(graph.NewRow("c", node(9, "Client", map[string]any{"identificationNumber": "ID-9"})))
	c, found, err := clients.FindByIdentificationNumber(ctx, "ID-9")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "9", c.ID())
}

func TestDevices(t *testing.T) {
	mock := graph.NewMockExecutor()
	devices := NewDevices(mock)
	ctx := context.Background()

	mock.AddRows(graph.NewRow("d", node(4, "Device", nil), "clientCount", int64(3)))
	shared, err := devices.FindUsedByMultipleClients(ctx, 0)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, int64(3), shared[0].ClientCount)
	call := mock.LastCall()
	assert.Contains(t, call.Cypher, "count(DISTINCT c) AS clientCount")
	assert.Equal(t, int64(DefaultMinDeviceClients), call.Params["minClients"])

	mock.AddRows(graph.NewRow("d", node(4, "Device", nil), "locationCount", int64(4)))
	roaming, err := devices.FindWithManyLocations(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), roaming[0].LocationCount)
	assert.Equal(t, int64(DefaultMinDeviceLocations), mock.LastCall().Params["minLocations"])

	_, _, err = devices.FindByDeviceID(ctx, "  ")
	assert.True(t, graph.IsValidation(err))
}

func TestLocations(t *testing.T) {
	mock := graph.NewMockExecutor()
	locations := NewLocations(mock)
	ctx := context.Background()

	_, err := locations.FindByCoordinates(ctx, 14.6, -90.5, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultRadius, mock.LastCall().Params["radius"])

	_, err = locations.FindByCoordinates(ctx, 95, 0, 0)
	assert.True(t, graph.IsValidation(err))

	mock.AddRows(graph.NewRow("l", node(5, "Location", nil), "transactionCount", int64(10), "avgRiskScore", 0.85))
	risky, err := locations.FindHighRisk(ctx, 0)
	require.NoError(t, err)
	require.Len(t, risky, 1)
	assert.Equal(t, 0.85, risky[0].AvgRiskScore)
	assert.Equal(t, DefaultMinAverageRisk, mock.LastCall().Params["minAverageRisk"])

	mock.AddRows(graph.NewRow("l", node(6, "Location", nil), "transactionCount", int64(1)))
	unusual, err := locations.FindUnusualForClient(ctx, "12", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unusual[0].TransactionCount)
	call := mock.LastCall()
	assert.Equal(t, int64(12), call.Params["clientId"])
	assert.Equal(t, int64(DefaultMaxUnusualTransactions), call.Params["maxTransactions"])

	_, err = locations.FindUnusualForClient(ctx, "client-12", 0)
	assert.True(t, graph.IsValidation(err))
}

func TestTransactions_Ranges(t *testing.T) {
	mock := graph.NewMockExecutor()
	txs := NewTransactions(mock)
	ctx := context.Background()
	start := fixedNow.AddDate(0, -1, 0)

	_, err := txs.FindInDateRange(ctx, start, fixedNow)
	require.NoError(t, err)
	call := mock.LastCall()
	assert.Equal(t, start, call.Params["start"])
	assert.Contains(t, call.Cypher, "WHERE at >= $start AND at <= $end")
	assert.Contains(t, call.Cypher, "THEN datetime(toString(t.date)) END AS at")

	_, err = txs.FindInDateRange(ctx, fixedNow, start)
	assert.True(t, graph.IsValidation(err))
	_, err = txs.FindInDateRange(ctx, time.Time{}, fixedNow)
	assert.True(t, graph.IsValidation(err))

	_, err = txs.FindByAmount(ctx, 100, 50)
	assert.True(t, graph.IsValidation(err))
}

func TestTransactions_FindSuspicious(t *testing.T) {
	mock := graph.NewMockExecutor()
	txs := NewTransactions(mock)
	mock.AddRows(graph.NewRow(
		"t", node(1, "Transaction", map[string]any{"amount": 15000.0}),
		"from", node(2, "Account", nil),
		"to", node(3, "Account", nil),
		"d", nil,
		"l", node(4, "Location", nil),
	))

	rows, err := txs.FindSuspicious(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0].From.ID())
	assert.Nil(t, rows[0].Device)
	assert.Equal(t, "4", rows[0].Location.ID())

	call := mock.LastCall()
	assert.Equal(t, DefaultSuspiciousAmount, call.Params["threshold"])
	assert.Equal(t, DefaultSuspiciousRisk, call.Params["minRisk"])
	assert.Contains(t, call.Cypher, "OPTIONAL MATCH (t)-[:MADE_FROM]->(d:Device)")
}

func TestTransactions_FindBetweenAccounts(t *testing.T) {
	mock := graph.NewMockExecutor()
	txs := NewTransactions(mock)

	_, err := txs.FindBetweenAccounts(context.Background(), "1", "2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), mock.LastCall().Params["fromId"])

	_, err = txs.FindBetweenAccounts(context.Background(), "1", "two")
	assert.True(t, graph.IsValidation(err))
}

func TestTransactions_FindCircular(t *testing.T) {
	mock := graph.NewMockExecutor()
	txs := NewTransactions(mock)
	ctx := context.Background()

	path := graph.Path{
		Nodes: []graph.Node{node(1, "Account", nil), node(10, "Transaction", nil), node(2, "Account", nil)},
		Relationships: []graph.Relationship{
			{ID: 20, Type: "FROM", StartID: 10, EndID: 1},
			{ID: 21, Type: "TO", StartID: 10, EndID: 2},
		},
	}
	mock.AddRows(graph.NewRow("a", node(1, "Account", nil), "path", graph.PathValue(path), "hops", int64(2)))

	cycles, err := txs.FindCircular(ctx, 0)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, 2, cycles[0].Hops)
	assert.Len(t, cycles[0].Nodes, 3)
	assert.Len(t, cycles[0].Relationships, 2)
	assert.Contains(t, mock.LastCall().Cypher, "{2,4}")

	for _, depth := range []int{1, 11, -3} {
		_, err := txs.FindCircular(ctx, depth)
		assert.True(t, graph.IsValidation(err), "depth %d", depth)
	}
}

func TestFinders_ResultLimit(t *testing.T) {
	ctx := context.Background()

	mock := graph.NewMockExecutor()
	_, err := NewDevices(mock).FindUsedByMultipleClients(ctx, 3)
	require.NoError(t, err)
	call := mock.LastCall()
	assert.True(t, strings.HasSuffix(call.Cypher, "LIMIT $limit"))
	assert.Equal(t, int64(DefaultResultLimit), call.Params["limit"])
	assert.Equal(t, int64(3), call.Params["minClients"])

	mock = graph.NewMockExecutor()
	_, err = NewAccounts(mock, WithResultLimit(25), WithClock(clock)).FindRecentlyCreated(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(25), mock.LastCall().Params["limit"])

	mock = graph.NewMockExecutor()
	_, err = NewAccounts(mock, WithResultLimit(0)).FindWithOwner(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultResultLimit), mock.LastCall().Params["limit"])

	mock = graph.NewMockExecutor()
	_, _, err = NewDevices(mock, WithResultLimit(25)).FindByDeviceID(ctx, "dev-1")
	require.NoError(t, err)
	call = mock.LastCall()
	assert.Equal(t, 1, strings.Count(call.Cypher, "LIMIT"))
	assert.NotContains(t, call.Params, "limit")
}
