package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
)

func accountNode(id graph.ID, props map[string]any) graph.Node {
	return graph.Node{ID: id, Labels: []string{"Account"}, Props: props}
}

func TestCreateNode(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.AddRows(graph.NewRow("n", accountNode(7, map[string]any{"accountNumber": "ES-001", "balance": 1500.5})))

	rec, env := do(t, srv, http.MethodPost, "/api/accounts/",
		`{"properties":{"accountNumber":"ES-001","balance":1500.5,"openedYear":2019},"additionalLabels":["Flagged"]}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, "Item created successfully", env.Message)

	var node map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &node))
	assert.Equal(t, "7", node["id"])
	assert.Equal(t, "ES-001", node["accountNumber"])

	call := mock.LastCall()
	assert.Contains(t, call.Cypher, "CREATE (n:Account:Flagged)")
	props := call.Params["props"].(map[string]any)
	assert.Equal(t, int64(2019), props["openedYear"])
	assert.Equal(t, 1500.5, props["balance"])
}

func TestCreateNode_BareMapAndValidation(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.AddRows(graph.NewRow("n", accountNode(8, map[string]any{"accountNumber": "ES-002"})))

	rec, _ := do(t, srv, http.MethodPost, "/api/accounts/", `{"accountNumber":"ES-002"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, env := do(t, srv, http.MethodPost, "/api/accounts/", `{"properties":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Kind)

	rec, _ = do(t, srv, http.MethodPost, "/api/accounts/", `{"properties":{"a":1},"additionalLabels":["Bogus"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, srv, http.MethodPost, "/api/accounts/", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Len(t, mock.QueryCalls(), 1)
}

func TestGetNode(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.AddRows(graph.NewRow("n", accountNode(7, map[string]any{"accountNumber": "ES-001"})))

	rec, env := do(t, srv, http.MethodGet, "/api/accounts/7", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"accountNumber":"ES-001"`)
	assert.Equal(t, int64(7), mock.LastCall().Params["id"])

	rec, env = do(t, srv, http.MethodGet, "/api/accounts/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, KindNotFound, env.Error.Kind)

	rec, _ = do(t, srv, http.MethodGet, "/api/accounts/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListNodes(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.AddRows(
		graph.NewRow("n", accountNode(1, map[string]any{"accountNumber": "A"})),
		graph.NewRow("n", accountNode(2, map[string]any{"accountNumber": "B"})),
	)

	rec, env := do(t, srv, http.MethodGet, "/api/accounts/?limit=2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)
	assert.Equal(t, int64(2), mock.LastCall().Params["limit"])

	rec, _ = do(t, srv, http.MethodGet, "/api/accounts/?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, srv, http.MethodGet, "/api/accounts/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Equal(t, 0, *env.Count)
}

func TestUpdateAndRemoveProperties(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.AddRows(graph.NewRow("n", accountNode(7, map[string]any{"balance": 10.0})))

	rec, env := do(t, srv, http.MethodPut, "/api/accounts/7", `{"balance":10.0}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Item updated successfully", env.Message)
	assert.Contains(t, mock.LastCall().Cypher, "SET n += $props")

	rec, _ = do(t, srv, http.MethodPatch, "/api/accounts/7/properties", `{"properties":{"flagged":true}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	mock.AddRows(graph.NewRow("n", accountNode(7, map[string]any{})))
	rec, env = do(t, srv, http.MethodDelete, "/api/accounts/7/properties", `{"properties":["balance"]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Properties removed successfully", env.Message)

	rec, _ = do(t, srv, http.MethodDelete, "/api/accounts/7/properties", `{"properties":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteNode(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.AddRows(graph.NewRow("deleted", int64(1)))

	rec, env := do(t, srv, http.MethodDelete, "/api/accounts/7", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Item deleted successfully", env.Message)
	assert.Contains(t, mock.LastCall().Cypher, "DETACH DELETE n")

	mock.AddRows(graph.NewRow("deleted", int64(0)))
	rec, _ = do(t, srv, http.MethodDelete, "/api/accounts/7", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchRoutes(t *testing.T) {
	srv, mock := newTestServer(t)
	mock.AddRows(graph.NewRow("updated", int64(2)))
	mock.AddRows(graph.NewRow("deleted", int64(1)))

	rec, env := do(t, srv, http.MethodPatch, "/api/clients/batch/update",
		`{"ids":["1",2],"properties":{"reviewed":true}}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2 items updated successfully", env.Message)
	assert.JSONEq(t, `{"updated":2}`, string(env.Data))
	assert.Equal(t, []int64{1, 2}, mock.LastCall().Params["ids"])

	rec, env = do(t, srv, http.MethodDelete, "/api/clients/batch/delete", `{"ids":[1]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, string(env.Data))

	rec, _ = do(t, srv, http.MethodDelete, "/api/clients/batch/delete", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = do(t, srv, http.MethodPatch, "/api/clients/batch/update", `{"ids":[1]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelationshipRoutes(t *testing.T) {
	srv, mock := newTestServer(t)
	rel := graph.Relationship{ID: 40, Type: "OWNS", StartID: 1, EndID: 7, Props: map[string]any{"since": "2020"}}
	mock.AddRows(graph.NewRow("r", rel))

	rec, env := do(t, srv, http.MethodPost, "/api/clients/1/relationship/OWNS/7", `{"since":"2020"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Relationship created successfully", env.Message)
	assert.Contains(t, mock.LastCall().Cypher, "OWNS")

	rec, _ = do(t, srv, http.MethodPost, "/api/clients/1/relationship/LIKES/7", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, srv, http.MethodPost, "/api/clients/1/relationship/OWNS/404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Could not create relationship. Check if nodes exist.", env.Error.Message)

	mock.AddRows(graph.NewRow("deleted", int64(1)))
	rec, _ = do(t, srv, http.MethodDelete, "/api/clients/relationship/40", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNodeQueryRoute(t *testing.T) {
	srv, mock := newTestServer(t)
	rec, env := do(t, srv, http.MethodPost, "/api/clients/query", `{"query":"MATCH (n) RETURN n"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, KindForbidden, env.Error.Kind)
	assert.Empty(t, mock.QueryCalls())

	cfg := testAPIConfig()
	cfg.AllowRawQueries = true
	srv, err := New(cfg, mock, mock)
	require.NoError(t, err)

	mock.AddRows(graph.NewRow("total", int64(3)))
	rec, env = do(t, srv, http.MethodPost, "/api/clients/query",
		`{"query":"MATCH (n) WHERE n.x = $x RETURN count(n) AS total","params":{"x":5}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"total":3}]`, string(env.Data))
	assert.Equal(t, int64(5), mock.LastCall().Params["x"])

	mock.AddError(graph.NewQueryError("query failed", errors.New("Invalid input 'MATCHX'")))
	rec, env = do(t, srv, http.MethodPost, "/api/clients/query", `{"query":"MATCHX"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Error.Message, "Invalid input")

	rec, _ = do(t, srv, http.MethodPost, "/api/clients/query", `{"params":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
