package graph

// Kind tags what a raw result value was classified as by the driver adapter.
type Kind uint8

const (
	KindScalar Kind = iota
	KindNode
	KindRelationship
	KindList
	KindMap
	KindPath
)

// String returns a readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindRelationship:
		return "relationship"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindPath:
		return "path"
	default:
		return "scalar"
	}
}

// Node is a labeled graph entity as returned by the store.
type Node struct {
	ID     ID
	Labels []string
	Props  map[string]any
}

// Relationship is a typed, directed edge as returned by the store.
type Relationship struct {
	ID      ID
	Type    string
	StartID ID
	EndID   ID
	Props   map[string]any
}

// Path is an alternating walk of nodes and relationships.
type Path struct {
	Nodes         []Node
	Relationships []Relationship
}

// Value is a result field after classification. Exactly one payload is
// meaningful, selected by Kind.
type Value struct {
	Kind         Kind
	Scalar       any
	Node         Node
	Relationship Relationship
	List         []Value
	Map          map[string]Value
	Path         Path
}

// ScalarValue wraps an opaque value that needs no normalization.
func ScalarValue(v any) Value {
	return Value{Kind: KindScalar, Scalar: v}
}

// NodeValue wraps a node.
func NodeValue(n Node) Value {
	return Value{Kind: KindNode, Node: n}
}

// RelationshipValue wraps a relationship.
func RelationshipValue(r Relationship) Value {
	return Value{Kind: KindRelationship, Relationship: r}
}

// ListValue wraps a collection whose items may themselves be nodes or relationships.
func ListValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindList, List: items}
}

// MapValue wraps a map projection whose values may contain graph entities.
func MapValue(m map[string]Value) Value {
	return Value{Kind: KindMap, Map: m}
}

// PathValue wraps a path.
func PathValue(p Path) Value {
	return Value{Kind: KindPath, Path: p}
}

// Row is one classified result row, with column order preserved.
type Row struct {
	Keys   []string
	Values []Value
}

// NewRow builds a row from alternating key/value pairs. Values that are not
// already a Value are wrapped as scalars. It exists mainly for tests and mocks.
func NewRow(pairs ...any) Row {
	row := Row{}
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		row.Keys = append(row.Keys, key)
		switch v := pairs[i+1].(type) {
		case Value:
			row.Values = append(row.Values, v)
		case Node:
			row.Values = append(row.Values, NodeValue(v))
		case Relationship:
			row.Values = append(row.Values, RelationshipValue(v))
		default:
			row.Values = append(row.Values, ScalarValue(v))
		}
	}
	return row
}
