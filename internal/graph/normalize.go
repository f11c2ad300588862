package graph

// Normalize converts a classified row into a record with the same field names.
// Nodes and relationships are flattened into projections; collections are
// normalized element-wise; everything else passes through untouched. It never fails.
func Normalize(row Row) Record {
	values := make([]any, len(row.Keys))
	for i := range row.Keys {
		if i < len(row.Values) {
			values[i] = normalizeValue(row.Values[i])
		}
	}
	return NewRecord(row.Keys, values)
}

func normalizeValue(v Value) any {
	switch v.Kind {
	case KindNode:
		return v.Node.Projection()
	case KindRelationship:
		return v.Relationship.Projection()
	case KindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = normalizeValue(item)
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.Map))
		for k, item := range v.Map {
			out[k] = normalizeValue(item)
		}
		return out
	case KindPath:
		nodes := make([]any, len(v.Path.Nodes))
		for i, n := range v.Path.Nodes {
			nodes[i] = n.Projection()
		}
		rels := make([]any, len(v.Path.Relationships))
		for i, r := range v.Path.Relationships {
			rels[i] = r.Projection()
		}
		return map[string]any{
			"nodes":         nodes,
			"relationships": rels,
		}
	default:
		return v.Scalar
	}
}

// Projection flattens the node: properties, then id and labels. Metadata wins
// over a property of the same name.
func (n Node) Projection() Projection {
	p := make(Projection, len(n.Props)+2)
	for k, v := range n.Props {
		p[k] = v
	}
	labels := make([]string, len(n.Labels))
	copy(labels, n.Labels)
	p["id"] = n.ID.String()
	p["labels"] = labels
	return p
}

// Projection flattens the relationship: properties, then id, type and endpoints.
func (r Relationship) Projection() Projection {
	p := make(Projection, len(r.Props)+4)
	for k, v := range r.Props {
		p[k] = v
	}
	p["id"] = r.ID.String()
	p["type"] = r.Type
	p["startNodeId"] = r.StartID.String()
	p["endNodeId"] = r.EndID.String()
	return p
}
