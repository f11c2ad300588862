package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zero-day-ai/fraudgraph/internal/fraud"
	"github.com/zero-day-ai/fraudgraph/internal/graph"
)

func TestRiskCategoriesRoute(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.AddRows(graph.NewRow(
		"riskCategory", "High",
		"transactionCount", int64(4),
		"totalAmount", 1200.0,
		"avgAmount", 300.0,
		"minAmount", 100.0,
		"maxAmount", 500.0,
	))

	rec, env := do(t, srv, http.MethodGet, "/api/fraud-detection/risk-categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 5, *env.Count)

	var buckets []fraud.RiskBucket
	require.NoError(t, json.Unmarshal(env.Data, &buckets))
	assert.Equal(t, fraud.RiskVeryHigh, buckets[0].Category)
	assert.Equal(t, "High", buckets[1].Category)
	assert.Equal(t, int64(4), buckets[1].TransactionCount)
	assert.Zero(t, buckets[0].TransactionCount)
}

func TestDetectionQueryParameters(t *testing.T) {
	srv, mock := newTestServer(t)

	rec, _ := do(t, srv, http.MethodGet, "/api/fraud-detection/money-laundering?maxGapDays=5&maxAmountDeviation=0.2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	params := mock.LastCall().Params
	assert.Equal(t, int64(5*86400), params["maxGapSeconds"])
	assert.Equal(t, 0.2, params["maxDeviation"])

	rec, _ = do(t, srv, http.MethodGet, "/api/fraud-detection/unusual-device-usage?minClients=3", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), mock.LastCall().Params["minClients"])

	rec, env := do(t, srv, http.MethodGet, "/api/fraud-detection/unusual-device-usage?minClients=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Kind)

	rec, _ = do(t, srv, http.MethodGet, "/api/fraud-detection/unusual-device-usage?minClients=many", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRapidTransactionsRoute(t *testing.T) {
	srv, mock := newTestServer(t)

	rec, env := do(t, srv, http.MethodGet, "/api/fraud-detection/rapid-transactions", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Message, "account_id")
	assert.Empty(t, mock.QueryCalls())

	rec, env = do(t, srv, http.MethodGet, "/api/fraud-detection/rapid-transactions?accountId=7&timeWindowMinutes=30", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Equal(t, int64(7), mock.LastCall().Params["accountId"])
}

func TestOutlierAndAccelerationRoutes(t *testing.T) {
	srv, mock := newTestServer(t)

	rec, _ := do(t, srv, http.MethodGet, "/api/fraud-detection/unusual-patterns?multiplier=4", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4.0, mock.LastCall().Params["multiplier"])

	rec, _ = do(t, srv, http.MethodGet, "/api/fraud-detection/unusual-activity-increase?days=14", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReportRoute(t *testing.T) {
	srv, mock := newTestServer(t)

	rec, env := do(t, srv, http.MethodGet, "/api/fraud-detection/report", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &body))
	for _, key := range []string{"generatedAt", fraud.AlgLayeredLaundering, fraud.AlgSharedDevices,
		fraud.AlgOutlierAmounts, fraud.AlgActivityAcceleration, fraud.AlgRiskBuckets} {
		assert.Contains(t, body, key)
	}
	assert.Len(t, mock.QueryCalls(), 5)

	rec, _ = do(t, srv, http.MethodGet, "/api/fraud-detection/report?format=xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "fraud-report-")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 5)

	rec, _ = do(t, srv, http.MethodGet, "/api/fraud-detection/report?format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportRoute_FailurePropagates(t *testing.T) {
	srv, mock := newTestServer(t)
	for i := 0; i < 5; i++ {
		mock.AddError(graph.NewConnectionError("graph unavailable", errors.New("refused")))
	}

	rec, env := do(t, srv, http.MethodGet, "/api/fraud-detection/report", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "GRAPH_CONNECTION_FAILED", env.Error.Kind)
}

func TestFraudRawQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	rec, _ := do(t, srv, http.MethodPost, "/api/fraud-detection/query", `{"query":"RETURN 1 AS one"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	cfg := testAPIConfig()
	cfg.AllowRawQueries = true
	mock := graph.NewMockExecutor()
	srv, err := New(cfg, mock, mock)
	require.NoError(t, err)

	mock.AddRows(graph.NewRow("one", int64(1)))
	rec, env := do(t, srv, http.MethodPost, "/api/fraud-detection/query", `{"query":"RETURN 1 AS one"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"one":1}]`, string(env.Data))
	assert.Equal(t, "ExecuteRead", mock.LastCall().Method)
}
