// Package repository implements label-scoped CRUD over the graph executor.
//
// A Repository is bound to one primary label. Every generic node query
// matches on that label, and labels and relationship types are only ever
// taken from the schema vocabulary. All caller data travels as bound
// parameters.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
	"github.com/zero-day-ai/fraudgraph/internal/schema"
)

const (
	// DefaultLimit applies when FindNodes is called with limit <= 0.
	DefaultLimit = 100

	// MaxLimit is the largest limit FindNodes accepts.
	MaxLimit = 1000
)

// Repository provides generic CRUD for one node label.
type Repository struct {
	exec         graph.Executor
	label        schema.Label
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithLimits overrides the default and maximum FindNodes limits.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(r *Repository) {
		if defaultLimit > 0 {
			r.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			r.maxLimit = maxLimit
		}
	}
}

// WithLogger sets the logger used for write operations.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a repository scoped to label.
func New(exec graph.Executor, label schema.Label, opts ...Option) *Repository {
	r := &Repository{
		exec:         exec,
		label:        label,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.defaultLimit > r.maxLimit {
		r.defaultLimit = r.maxLimit
	}
	return r
}

// Label returns the primary label.
func (r *Repository) Label() schema.Label {
	return r.label
}

// Executor returns the executor queries run on.
func (r *Repository) Executor() graph.Executor {
	return r.exec
}

// Logger returns the repository logger.
func (r *Repository) Logger() *slog.Logger {
	return r.logger
}

// CreateNode creates a node carrying the primary label plus any additional
// labels. props must be non-empty.
func (r *Repository) CreateNode(ctx context.Context, props map[string]any, additional ...schema.Label) (graph.Projection, error) {
	if len(props) == 0 {
		return nil, graph.NewValidationError("properties are required to create a node")
	}
	if err := ValidateProperties(props); err != nil {
		return nil, err
	}
	for _, l := range additional {
		if !l.Valid() {
			return nil, graph.NewValidationError(fmt.Sprintf("unknown label %q", l))
		}
	}

	labels := append([]schema.Label{r.label}, additional...)
	cypher := fmt.Sprintf("CREATE (n%s) SET n = $props RETURN n", schema.LabelExpr(labels...))

	records, err := r.exec.Execute(ctx, cypher, map[string]any{"props": props})
	if err != nil {
		return nil, err
	}
	node, ok := first(records, "n")
	if !ok {
		return nil, graph.NewQueryError("create returned no node", nil)
	}
	r.logger.DebugContext(ctx, "node created", "label", r.label, "id", node.ID())
	return node, nil
}

// FindNodes returns nodes whose properties equal every filter entry. An empty
// filter matches all nodes of the label.
func (r *Repository) FindNodes(ctx context.Context, filter map[string]any, limit int) ([]graph.Projection, error) {
	if limit <= 0 {
		limit = r.defaultLimit
	}
	if limit > r.maxLimit {
		return nil, graph.NewValidationError(fmt.Sprintf("limit %d exceeds maximum %d", limit, r.maxLimit))
	}
	if filter == nil {
		filter = map[string]any{}
	}
	if err := ValidateProperties(filter); err != nil {
		return nil, err
	}

	cypher := fmt.Sprintf(`
		MATCH (n:%s)
		WHERE all(k IN keys($filter) WHERE n[k] = $filter[k])
		RETURN n
		LIMIT $limit`, r.label)

	records, err := r.exec.ExecuteRead(ctx, cypher, map[string]any{
		"filter": filter,
		"limit":  int64(limit),
	})
	if err != nil {
		return nil, err
	}
	return graph.Projections(records, "n"), nil
}

// FindNodeByID returns the node with the given identity. found is false when
// no node of this label has that identity.
func (r *Repository) FindNodeByID(ctx context.Context, id string) (node graph.Projection, found bool, err error) {
	nid, err := graph.ParseID(id)
	if err != nil {
		return nil, false, err
	}

	cypher := fmt.Sprintf("MATCH (n:%s) WHERE id(n) = $id RETURN n", r.label)
	records, err := r.exec.ExecuteRead(ctx, cypher, map[string]any{"id": int64(nid)})
	if err != nil {
		return nil, false, err
	}
	node, found = first(records, "n")
	return node, found, nil
}

// UpdateNode merges props into the node. Keys not in props are left untouched.
func (r *Repository) UpdateNode(ctx context.Context, id string, props map[string]any) (graph.Projection, bool, error) {
	nid, err := graph.ParseID(id)
	if err != nil {
		return nil, false, err
	}
	if len(props) == 0 {
		return nil, false, graph.NewValidationError("properties are required to update a node")
	}
	if err := ValidateProperties(props); err != nil {
		return nil, false, err
	}
	return r.mergeNode(ctx, nid, props)
}

// AddPropertiesToNode adds or overwrites the given properties.
func (r *Repository) AddPropertiesToNode(ctx context.Context, id string, props map[string]any) (graph.Projection, bool, error) {
	return r.UpdateNode(ctx, id, props)
}

// RemovePropertiesFromNode deletes the named keys from the node. Keys the
// node does not carry are ignored.
func (r *Repository) RemovePropertiesFromNode(ctx context.Context, id string, keys []string) (graph.Projection, bool, error) {
	nid, err := graph.ParseID(id)
	if err != nil {
		return nil, false, err
	}
	if err := validatePropertyKeys(keys); err != nil {
		return nil, false, err
	}
	return r.mergeNode(ctx, nid, removalMap(keys))
}

func (r *Repository) mergeNode(ctx context.Context, id graph.ID, props map[string]any) (graph.Projection, bool, error) {
	cypher := fmt.Sprintf("MATCH (n:%s) WHERE id(n) = $id SET n += $props RETURN n", r.label)
	records, err := r.exec.Execute(ctx, cypher, map[string]any{
		"id":    int64(id),
		"props": props,
	})
	if err != nil {
		return nil, false, err
	}
	node, found := first(records, "n")
	return node, found, nil
}

// DeleteNode detach-deletes the node. It reports whether a node was removed.
func (r *Repository) DeleteNode(ctx context.Context, id string) (bool, error) {
	nid, err := graph.ParseID(id)
	if err != nil {
		return false, err
	}

	cypher := fmt.Sprintf("MATCH (n:%s) WHERE id(n) = $id DETACH DELETE n RETURN count(*) AS deleted", r.label)
	records, err := r.exec.Execute(ctx, cypher, map[string]any{"id": int64(nid)})
	if err != nil {
		return false, err
	}
	deleted := count(records, "deleted") > 0
	if deleted {
		r.logger.DebugContext(ctx, "node deleted", "label", r.label, "id", id)
	}
	return deleted, nil
}

// CreateRelationship links fromID (which must carry the primary label) to
// toID. found is false when either endpoint does not exist.
func (r *Repository) CreateRelationship(ctx context.Context, fromID, toID string, relType schema.RelType, props map[string]any) (graph.Projection, bool, error) {
	from, err := graph.ParseID(fromID)
	if err != nil {
		return nil, false, err
	}
	to, err := graph.ParseID(toID)
	if err != nil {
		return nil, false, err
	}
	if !relType.Valid() {
		return nil, false, graph.NewValidationError(fmt.Sprintf("unknown relationship type %q", relType))
	}
	if props == nil {
		props = map[string]any{}
	}
	if err := ValidateProperties(props); err != nil {
		return nil, false, err
	}

	cypher := fmt.Sprintf(`
		MATCH (a:%s), (b)
		WHERE id(a) = $fromId AND id(b) = $toId
		CREATE (a)-[r:%s]->(b)
		SET r = $props
		RETURN r`, r.label, relType)

	records, err := r.exec.Execute(ctx, cypher, map[string]any{
		"fromId": int64(from),
		"toId":   int64(to),
		"props":  props,
	})
	if err != nil {
		return nil, false, err
	}
	rel, found := first(records, "r")
	return rel, found, nil
}

// UpdateRelationship merges props into the relationship with the given identity.
func (r *Repository) UpdateRelationship(ctx context.Context, id string, props map[string]any) (graph.Projection, bool, error) {
	rid, err := graph.ParseID(id)
	if err != nil {
		return nil, false, err
	}
	if len(props) == 0 {
		return nil, false, graph.NewValidationError("properties are required to update a relationship")
	}
	if err := ValidateProperties(props); err != nil {
		return nil, false, err
	}
	return r.mergeRelationship(ctx, rid, props)
}

// AddPropertiesToRelationship adds or overwrites relationship properties.
func (r *Repository) AddPropertiesToRelationship(ctx context.Context, id string, props map[string]any) (graph.Projection, bool, error) {
	return r.UpdateRelationship(ctx, id, props)
}

// RemovePropertiesFromRelationship deletes the named keys from the relationship.
func (r *Repository) RemovePropertiesFromRelationship(ctx context.Context, id string, keys []string) (graph.Projection, bool, error) {
	rid, err := graph.ParseID(id)
	if err != nil {
		return nil, false, err
	}
	if err := validatePropertyKeys(keys); err != nil {
		return nil, false, err
	}
	return r.mergeRelationship(ctx, rid, removalMap(keys))
}

func (r *Repository) mergeRelationship(ctx context.Context, id graph.ID, props map[string]any) (graph.Projection, bool, error) {
	records, err := r.exec.Execute(ctx,
		"MATCH ()-[r]->() WHERE id(r) = $id SET r += $props RETURN r",
		map[string]any{"id": int64(id), "props": props})
	if err != nil {
		return nil, false, err
	}
	rel, found := first(records, "r")
	return rel, found, nil
}

// DeleteRelationship removes the relationship. It reports whether one was removed.
func (r *Repository) DeleteRelationship(ctx context.Context, id string) (bool, error) {
	rid, err := graph.ParseID(id)
	if err != nil {
		return false, err
	}
	records, err := r.exec.Execute(ctx,
		"MATCH ()-[r]->() WHERE id(r) = $id DELETE r RETURN count(*) AS deleted",
		map[string]any{"id": int64(rid)})
	if err != nil {
		return false, err
	}
	return count(records, "deleted") > 0, nil
}

// BatchUpdateNodes merges props into every listed node in a single UNWIND
// query and returns how many nodes were updated. Unknown ids are skipped.
// The whole batch runs as one query, so it commits or fails as a unit.
func (r *Repository) BatchUpdateNodes(ctx context.Context, ids []string, props map[string]any) (int, error) {
	nids, err := parseBatchIDs(ids)
	if err != nil {
		return 0, err
	}
	if len(props) == 0 {
		return 0, graph.NewValidationError("properties are required for a batch update")
	}
	if err := ValidateProperties(props); err != nil {
		return 0, err
	}

	cypher := fmt.Sprintf(`
		UNWIND $ids AS nid
		MATCH (n:%s) WHERE id(n) = nid
		SET n += $props
		RETURN count(n) AS updated`, r.label)

	records, err := r.exec.Execute(ctx, cypher, map[string]any{"ids": nids, "props": props})
	if err != nil {
		return 0, err
	}
	updated := int(count(records, "updated"))
	r.logger.DebugContext(ctx, "batch update", "label", r.label, "requested", len(ids), "updated", updated)
	return updated, nil
}

// BatchDeleteNodes detach-deletes every listed node in a single UNWIND query
// and returns how many were removed. Unknown ids are skipped.
func (r *Repository) BatchDeleteNodes(ctx context.Context, ids []string) (int, error) {
	nids, err := parseBatchIDs(ids)
	if err != nil {
		return 0, err
	}

	cypher := fmt.Sprintf(`
		UNWIND $ids AS nid
		MATCH (n:%s) WHERE id(n) = nid
		DETACH DELETE n
		RETURN count(*) AS deleted`, r.label)

	records, err := r.exec.Execute(ctx, cypher, map[string]any{"ids": nids})
	if err != nil {
		return 0, err
	}
	deleted := int(count(records, "deleted"))
	r.logger.DebugContext(ctx, "batch delete", "label", r.label, "requested", len(ids), "deleted", deleted)
	return deleted, nil
}

// ExecuteQuery runs caller-supplied Cypher verbatim in a write-capable
// transaction. Callers must be trusted; nothing is validated.
func (r *Repository) ExecuteQuery(ctx context.Context, cypher string, params map[string]any) ([]graph.Record, error) {
	return r.exec.Execute(ctx, cypher, params)
}

// parseBatchIDs parses and deduplicates ids so a repeated id is counted once.
func parseBatchIDs(ids []string) ([]int64, error) {
	if len(ids) == 0 {
		return nil, graph.NewValidationError("at least one id is required")
	}
	parsed, err := graph.ParseIDs(ids)
	if err != nil {
		return nil, err
	}
	seen := make(map[graph.ID]bool, len(parsed))
	unique := parsed[:0]
	for _, id := range parsed {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return graph.Int64s(unique), nil
}

func first(records []graph.Record, key string) (graph.Projection, bool) {
	if len(records) == 0 {
		return nil, false
	}
	return records[0].Projection(key)
}

func count(records []graph.Record, key string) int64 {
	if len(records) == 0 {
		return 0
	}
	n, _ := graph.AsInt64(records[0].Value(key))
	return n
}
