package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/zero-day-ai/fraudgraph/cmd/fraudgraph/internal"
	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/types"
)

const testConfig = `neo4j:
  uri: bolt://graph.internal:7687
  username: neo4j
  password: s3cret-pass
logging:
  level: error
`

// resetFlags restores every flag to its default so commands can be executed
// repeatedly against the shared command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, mock *graph.MockExecutor, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0o600))

	original := newGraphClient
	newGraphClient = func(graph.ClientConfig) (graph.Client, error) {
		if mock == nil {
			return nil, errors.New("no graph in this test")
		}
		return mock, nil
	}
	t.Cleanup(func() {
		newGraphClient = original
		current = nil
	})

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	if !slices.Contains(args, "--config") {
		args = append(args, "--config", cfgPath)
	}
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func exitCode(err error) int {
	cmd := &cobra.Command{}
	cmd.SetErr(&bytes.Buffer{})
	return internal.HandleError(cmd, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, nil, "version", "-o", "json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "goVersion")
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := run(t, nil, "version", "-o", "xml")
	require.Error(t, err)
	assert.Equal(t, internal.ExitValidationError, exitCode(err))

	_, err = run(t, nil, "version", "-v", "-q")
	assert.Equal(t, internal.ExitValidationError, exitCode(err))
}

func TestConfigShow(t *testing.T) {
	out, err := run(t, nil, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "uri: bolt://graph.internal:7687")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "s3cret-pass")
}

func TestConfigError(t *testing.T) {
	_, err := run(t, nil, "config", "show", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, internal.ExitConfigError, exitCode(err))
}

func TestNodeGet(t *testing.T) {
	mock := graph.NewMockExecutor()
	mock.AddRows(graph.NewRow("n", graph.Node{ID: 7, Labels: []string{"Account"}, Props: map[string]any{"accountNumber": "ES-001"}}))

	out, err := run(t, mock, "node", "get", "7", "--kind", "accounts", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"accountNumber": "ES-001"`)
	assert.Contains(t, mock.LastCall().Cypher, "MATCH (n:Account)")
	assert.Equal(t, int64(7), mock.LastCall().Params["id"])

	_, err = run(t, graph.NewMockExecutor(), "node", "get", "8", "--kind", "account")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Account found with id 8")

	_, err = run(t, graph.NewMockExecutor(), "node", "get", "8", "--kind", "widgets")
	assert.Equal(t, internal.ExitValidationError, exitCode(err))
}

func TestNodeFind(t *testing.T) {
	mock := graph.NewMockExecutor()
	mock.AddRows(
		graph.NewRow("n", graph.Node{ID: 1, Labels: []string{"Client"}, Props: map[string]any{"name": "Ana", "riskScore": 0.9}}),
	)

	out, err := run(t, mock, "node", "find", "--kind", "clients", "--where", "riskScore=0.9", "--where", "name=Ana", "--limit", "5", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "RISKSCORE")
	assert.Contains(t, out, "Ana")

	call := mock.LastCall()
	assert.Equal(t, map[string]any{"riskScore": 0.9, "name": "Ana"}, call.Params["filter"])
	assert.Equal(t, int64(5), call.Params["limit"])

	_, err = run(t, graph.NewMockExecutor(), "node", "find", "--kind", "clients", "--where", "broken")
	assert.Equal(t, internal.ExitValidationError, exitCode(err))
}

func TestNodeCreate(t *testing.T) {
	mock := graph.NewMockExecutor()
	mock.AddRows(graph.NewRow("n", graph.Node{ID: 3, Labels: []string{"Client", "Flagged"}, Props: map[string]any{"name": "Ana"}}))

	_, err := run(t, mock, "node", "create", "--kind", "client", "--props", `{"name":"Ana","age":30}`, "--label", "Flagged", "-o", "json")
	require.NoError(t, err)

	call := mock.LastCall()
	assert.Contains(t, call.Cypher, "CREATE (n:Client:Flagged)")
	assert.Equal(t, map[string]any{"name": "Ana", "age": int64(30)}, call.Params["props"])

	_, err = run(t, graph.NewMockExecutor(), "node", "create", "--kind", "client", "--props", `[1,2]`)
	assert.Equal(t, internal.ExitValidationError, exitCode(err))
}

func TestNodeDelete(t *testing.T) {
	mock := graph.NewMockExecutor()
	mock.AddRows(graph.NewRow("deleted", int64(1)))

	out, err := run(t, mock, "node", "delete", "9", "--kind", "devices", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","message":"Device 9 deleted"}`, out)
}

func TestDetectRiskBuckets(t *testing.T) {
	mock := graph.NewMockExecutor()
	out, err := run(t, mock, "detect", "risk-buckets", "-o", "json")
	require.NoError(t, err)

	var buckets []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &buckets))
	require.Len(t, buckets, 5)
	assert.Equal(t, "Very High", buckets[0]["riskCategory"])
}

func TestDetectValidation(t *testing.T) {
	_, err := run(t, graph.NewMockExecutor(), "detect", "shared-devices", "--min-clients", "1")
	assert.Equal(t, internal.ExitValidationError, exitCode(err))

	_, err = run(t, graph.NewMockExecutor(), "detect", "rapid", "not-an-id")
	assert.Equal(t, internal.ExitValidationError, exitCode(err))
}

func TestDetectConnectionFailure(t *testing.T) {
	mock := graph.NewMockExecutor()
	mock.SetConnectError(graph.NewConnectionError("graph unavailable", errors.New("refused")))

	_, err := run(t, mock, "detect", "outliers")
	assert.Equal(t, internal.ExitDatabaseError, exitCode(err))
}

func TestDetectAllWritesWorkbook(t *testing.T) {
	mock := graph.NewMockExecutor()
	path := filepath.Join(t.TempDir(), "report.xlsx")

	out, err := run(t, mock, "detect", "all", "--xlsx", path, "--min-clients", "3", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"risk-buckets"`)
	assert.Len(t, mock.QueryCalls(), 5)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 5)
}

func TestQuery(t *testing.T) {
	mock := graph.NewMockExecutor()
	mock.AddRows(graph.NewRow("x", int64(5)))

	out, err := run(t, mock, "query", "RETURN $x AS x", "--param", "x=5", "--read", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x":5}]`, out)

	call := mock.LastCall()
	assert.Equal(t, "ExecuteRead", call.Method)
	assert.Equal(t, map[string]any{"x": int64(5)}, call.Params)
}

func TestHealth(t *testing.T) {
	mock := graph.NewMockExecutor()
	out, err := run(t, mock, "health", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Graph: healthy")

	mock = graph.NewMockExecutor()
	mock.SetHealthStatus(types.Unhealthy("disk full"))
	_, err = run(t, mock, "health")
	assert.Equal(t, internal.ExitDatabaseError, exitCode(err))
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"a=1", "b=1.5", "c=true", "d=hello", `e="7"`, "f=[1,2]", "g="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": int64(1),
		"b": 1.5,
		"c": true,
		"d": "hello",
		"e": "7",
		"f": []any{int64(1), int64(2)},
		"g": "",
	}, got)

	_, err = parseAssignments([]string{"=1"})
	assert.True(t, graph.IsValidation(err))
}
