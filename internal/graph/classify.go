package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// classify tags a raw driver value. Anything the driver hands back that is not
// a graph entity or a container of them stays an opaque scalar.
func classify(raw any) Value {
	switch v := raw.(type) {
	case dbtype.Node:
		return NodeValue(nodeFromDB(v))
	case *dbtype.Node:
		if v == nil {
			return ScalarValue(nil)
		}
		return NodeValue(nodeFromDB(*v))
	case dbtype.Relationship:
		return RelationshipValue(relationshipFromDB(v))
	case *dbtype.Relationship:
		if v == nil {
			return ScalarValue(nil)
		}
		return RelationshipValue(relationshipFromDB(*v))
	case dbtype.Path:
		return PathValue(pathFromDB(v))
	case []any:
		items := make([]Value, len(v))
		for i, item := range v {
			items[i] = classify(item)
		}
		return ListValue(items...)
	case map[string]any:
		m := make(map[string]Value, len(v))
		for k, item := range v {
			m[k] = classify(item)
		}
		return MapValue(m)
	default:
		return ScalarValue(raw)
	}
}

//nolint:staticcheck // integer identities are the public id format
func nodeFromDB(n dbtype.Node) Node {
	return Node{
		ID:     ID(n.Id),
		Labels: n.Labels,
		Props:  n.Props,
	}
}

//nolint:staticcheck // integer identities are the public id format
func relationshipFromDB(r dbtype.Relationship) Relationship {
	return Relationship{
		ID:      ID(r.Id),
		Type:    r.Type,
		StartID: ID(r.StartId),
		EndID:   ID(r.EndId),
		Props:   r.Props,
	}
}

func pathFromDB(p dbtype.Path) Path {
	out := Path{
		Nodes:         make([]Node, len(p.Nodes)),
		Relationships: make([]Relationship, len(p.Relationships)),
	}
	for i, n := range p.Nodes {
		out.Nodes[i] = nodeFromDB(n)
	}
	for i, r := range p.Relationships {
		out.Relationships[i] = relationshipFromDB(r)
	}
	return out
}

// rowFromRecord classifies every field of a driver record.
func rowFromRecord(rec *neo4j.Record) Row {
	row := Row{
		Keys:   rec.Keys,
		Values: make([]Value, len(rec.Values)),
	}
	for i, v := range rec.Values {
		row.Values[i] = classify(v)
	}
	return row
}
