package repository

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
)

// ValidateProperties checks that props can be stored on a node or
// relationship: keys are non-empty and every value is a storable scalar or a
// homogeneous list of storable scalars. Nil values and nested maps are rejected.
func ValidateProperties(props map[string]any) error {
	for key, value := range props {
		if strings.TrimSpace(key) == "" {
			return graph.NewValidationError("property keys must not be empty")
		}
		if err := validateValue(key, value); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(key string, value any) error {
	if value == nil {
		return graph.NewValidationError(fmt.Sprintf("property %q: null values are not storable, use property removal instead", key))
	}
	if isStorableScalar(value) {
		return nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return graph.NewValidationError(fmt.Sprintf("property %q: unsupported value of type %T", key, value))
	}
	if _, isBytes := value.([]byte); isBytes {
		return nil
	}

	var elemKind string
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if elem == nil || !isStorableScalar(elem) {
			return graph.NewValidationError(fmt.Sprintf("property %q: list element %d of type %T is not storable", key, i, elem))
		}
		kind := scalarKind(elem)
		if elemKind == "" {
			elemKind = kind
		} else if kind != elemKind {
			return graph.NewValidationError(fmt.Sprintf("property %q: lists must be homogeneous, found %s and %s", key, elemKind, kind))
		}
	}
	return nil
}

func isStorableScalar(v any) bool {
	switch v.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint8, uint16, uint32,
		float32, float64,
		time.Time, time.Duration,
		dbtype.Date, dbtype.LocalDateTime, dbtype.LocalTime, dbtype.Time, dbtype.Duration,
		dbtype.Point2D, dbtype.Point3D:
		return true
	default:
		return false
	}
}

// scalarKind groups scalars the way the store does, so []any{1, 2.5} from a
// JSON body counts as a numeric list.
func scalarKind(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case string:
		return "string"
	case int, int8, int16, int32, int64, uint8, uint16, uint32, float32, float64:
		return "number"
	default:
		return "temporal"
	}
}

// validatePropertyKeys checks a list of keys slated for removal.
func validatePropertyKeys(keys []string) error {
	if len(keys) == 0 {
		return graph.NewValidationError("at least one property key is required")
	}
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			return graph.NewValidationError("property keys must not be empty")
		}
	}
	return nil
}

// removalMap maps every key to null. Merging it with SET += deletes the keys.
func removalMap(keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = nil
	}
	return out
}
