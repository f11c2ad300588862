package graph

import (
	"bytes"
	"encoding/json"
)

// Projection is the flattened, caller-facing shape of a node or relationship:
// its properties plus identity and label/type metadata at the same level.
type Projection map[string]any

// ID returns the stringified identity, or "" if the projection has none.
func (p Projection) ID() string {
	id, _ := p["id"].(string)
	return id
}

// Labels returns the node labels carried by the projection.
func (p Projection) Labels() []string {
	labels, _ := p["labels"].([]string)
	return labels
}

// Type returns the relationship type carried by the projection.
func (p Projection) Type() string {
	t, _ := p["type"].(string)
	return t
}

// Properties returns the projection without its metadata keys.
func (p Projection) Properties() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		switch k {
		case "id", "labels", "type", "startNodeId", "endNodeId":
			continue
		}
		out[k] = v
	}
	return out
}

// Record is a normalized result row. Field order follows the query's RETURN clause.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a record from parallel key and value slices.
func NewRecord(keys []string, values []any) Record {
	r := Record{
		keys:   make([]string, 0, len(keys)),
		values: make(map[string]any, len(keys)),
	}
	for i, k := range keys {
		var v any
		if i < len(values) {
			v = values[i]
		}
		if _, dup := r.values[k]; !dup {
			r.keys = append(r.keys, k)
		}
		r.values[k] = v
	}
	return r
}

// Keys returns the field names in column order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// Get returns the normalized value of a field.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the normalized value of a field, or nil.
func (r Record) Value(key string) any {
	return r.values[key]
}

// Projection returns the field as a node or relationship projection.
// ok is false when the field is absent, null, or not an entity.
func (r Record) Projection(key string) (Projection, bool) {
	p, ok := r.values[key].(Projection)
	return p, ok
}

// Map returns a copy of the record as a plain map.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the record as a JSON object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Projections extracts the named field from every record, skipping rows where
// it is not an entity.
func Projections(records []Record, key string) []Projection {
	out := make([]Projection, 0, len(records))
	for _, r := range records {
		if p, ok := r.Projection(key); ok {
			out = append(out, p)
		}
	}
	return out
}
