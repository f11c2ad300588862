package report

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zero-day-ai/fraudgraph/internal/fraud"
	"github.com/zero-day-ai/fraudgraph/internal/graph"
)

func TestFlatten(t *testing.T) {
	rows := []map[string]any{
		{
			"account":  map[string]any{"id": "1", "accountNumber": "ACC-1"},
			"count":    3,
			"clients":  []any{"a", "b"},
			"riskRate": 0.5,
		},
		{"count": 1},
	}

	table, err := Flatten(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"account.accountNumber", "account.id", "clients", "count", "riskRate"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []any{"ACC-1", "1", `["a","b"]`, int64(3), 0.5}, table.Rows[0])
	assert.Equal(t, []any{nil, nil, nil, int64(1), nil}, table.Rows[1])
}

func TestFlatten_Scalars(t *testing.T) {
	table, err := Flatten([]string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"value"}, table.Columns)
	assert.Equal(t, [][]any{{"x"}, {"y"}}, table.Rows)
}

func TestFlatten_NotAList(t *testing.T) {
	_, err := Flatten(map[string]any{"a": 1})
	assert.Error(t, err)
}

func TestWrite_RoundTrip(t *testing.T) {
	buckets := []fraud.RiskBucket{
		{Category: fraud.RiskVeryHigh, TransactionCount: 2, TotalAmount: 300, AvgAmount: 150, MinAmount: 100, MaxAmount: 200},
		{Category: fraud.RiskLow},
	}
	devices := []graph.Projection{}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf,
		Section{Name: fraud.AlgRiskBuckets, Rows: buckets},
		Section{Name: fraud.AlgSharedDevices, Rows: devices},
	))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{fraud.AlgRiskBuckets, fraud.AlgSharedDevices}, f.GetSheetList())

	rows, err := f.GetRows(fraud.AlgRiskBuckets)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Contains(t, rows[0], "riskCategory")
	assert.Contains(t, rows[1], fraud.RiskVeryHigh)

	empty, err := f.GetRows(fraud.AlgSharedDevices)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"no results"}}, empty)
}

func TestWrite_NoSections(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}))
}

func TestSave_FromReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	r := &fraud.Report{RiskBuckets: []fraud.RiskBucket{{Category: fraud.RiskMedium, TransactionCount: 1}}}

	require.NoError(t, Save(path, FromReport(r)...))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, sectionOrder, f.GetSheetList())
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "results", sheetName(""))
	assert.Len(t, sheetName("a-very-long-algorithm-name-that-overflows"), 31)
}
