package graph

import (
	"errors"
	"io"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	node := dbtype.Node{Id: 10, Labels: []string{"Account"}, Props: map[string]any{"accountNumber": "ACC-1"}}
	rel := dbtype.Relationship{Id: 11, StartId: 10, EndId: 12, Type: "TO", Props: map[string]any{}}

	tests := []struct {
		name string
		raw  any
		want Kind
	}{
		{name: "node", raw: node, want: KindNode},
		{name: "node pointer", raw: &node, want: KindNode},
		{name: "relationship", raw: rel, want: KindRelationship},
		{name: "path", raw: dbtype.Path{Nodes: []dbtype.Node{node}}, want: KindPath},
		{name: "list", raw: []any{node, int64(1)}, want: KindList},
		{name: "map", raw: map[string]any{"a": node}, want: KindMap},
		{name: "string", raw: "x", want: KindScalar},
		{name: "nil", raw: nil, want: KindScalar},
		{name: "date", raw: dbtype.Date{}, want: KindScalar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.raw).Kind)
		})
	}
}

func TestRowFromRecord(t *testing.T) {
	rec := &neo4j.Record{
		Keys: []string{"a", "total"},
		Values: []any{
			dbtype.Node{Id: 10, Labels: []string{"Account"}, Props: map[string]any{"accountNumber": "ACC-1"}},
			int64(4),
		},
	}

	out := Normalize(rowFromRecord(rec))
	p, ok := out.Projection("a")
	require.True(t, ok)
	assert.Equal(t, "10", p.ID())
	assert.Equal(t, "ACC-1", p["accountNumber"])
	assert.Equal(t, int64(4), out.Value("total"))
}

func TestClassify_ListElementsNormalized(t *testing.T) {
	raw := []any{
		dbtype.Relationship{Id: 1, StartId: 2, EndId: 3, Type: "FROM"},
		"plain",
	}

	got := normalizeValue(classify(raw)).([]any)
	require.Len(t, got, 2)
	assert.Equal(t, "FROM", got[0].(Projection).Type())
	assert.Equal(t, "plain", got[1])
}

func TestTranslateError(t *testing.T) {
	syntax := &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "bad"}

	err := translateError(syntax)
	assert.True(t, IsQuery(err))
	assert.False(t, IsConnection(err))
	assert.True(t, errors.Is(err, syntax) || errors.Unwrap(err) == syntax)

	err = translateError(errors.New("boom"))
	assert.True(t, IsQuery(err))
}

func TestTranslateError_RetryBudget(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		connection bool
	}{
		{
			name:       "bare connectivity error",
			err:        &neo4j.ConnectivityError{Inner: io.EOF},
			connection: true,
		},
		{
			name: "retries exhausted on unreachable store",
			err: &neo4j.TransactionExecutionLimit{
				Cause:  "timeout (exceeded max retry time: 30s)",
				Errors: []error{&neo4j.ConnectivityError{Inner: io.EOF}},
			},
			connection: true,
		},
		{
			name: "connectivity error is the last attempt",
			err: &neo4j.TransactionExecutionLimit{
				Errors: []error{
					&neo4j.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected"},
					&neo4j.ConnectivityError{Inner: io.ErrUnexpectedEOF},
				},
			},
			connection: true,
		},
		{
			name: "retries exhausted on deadlocks",
			err: &neo4j.TransactionExecutionLimit{
				Errors: []error{&neo4j.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected"}},
			},
		},
		{
			name: "retry budget without causes",
			err:  &neo4j.TransactionExecutionLimit{Cause: "too many failed connection attempts"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError(tt.err)
			assert.Equal(t, tt.connection, IsConnection(err))
			assert.Equal(t, !tt.connection, IsQuery(err))
		})
	}
}
