// Package graph is the query execution layer between fraudgraph and Neo4j.
//
// # Architecture
//
//   - Executor: runs parameterized Cypher and returns normalized records
//   - Neo4jClient: production Client backed by the Neo4j Go driver
//   - TracedExecutor: OpenTelemetry span and metric decorator for any Executor
//   - MockExecutor: FIFO test double with call recording
//
// Every raw driver value is first classified into a tagged Value (scalar,
// node, relationship, list, map or path) and then flattened by Normalize:
// nodes become their properties plus "id" and "labels", relationships their
// properties plus "id", "type", "startNodeId" and "endNodeId". Identities are
// always decimal strings.
//
// # Usage
//
//	client, err := graph.NewNeo4jClient(graph.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	records, err := client.ExecuteRead(ctx,
//	    "MATCH (a:Account {accountNumber: $n}) RETURN a",
//	    map[string]any{"n": "ACC-1"},
//	)
//
// # Connection Management
//
// One driver is shared by the process. Each Execute/ExecuteRead call borrows
// a session from the driver pool and returns it before the call completes.
// Pool size, acquisition timeout, connection lifetime and transaction retry
// budget come from ClientConfig.
//
// # Errors
//
// Failures carry one of three codes: ErrCodeValidation for bad caller input,
// ErrCodeConnectionFailed (retryable) when the store cannot be reached or a
// connection cannot be acquired, and ErrCodeQueryFailed when the store
// rejects a query. Use IsValidation, IsConnection and IsQuery to branch.
package graph
