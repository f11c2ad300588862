package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is the engine-assigned identity of a node or relationship.
// It is stable within a store instance and always crosses the API boundary as a
// decimal string so large values survive JSON consumers without precision loss.
type ID int64

// String returns the decimal form of the identity.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a caller-supplied identity. Anything that is not a
// non-negative base-10 integer is rejected with a ValidationError.
func ParseID(s string) (ID, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, NewValidationError("identity must not be empty")
	}
	n, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || n < 0 {
		return 0, NewValidationError(fmt.Sprintf("invalid identity %q", s))
	}
	return ID(n), nil
}

// ParseIDs parses every identity in ids, failing on the first invalid one.
func ParseIDs(ids []string) ([]ID, error) {
	out := make([]ID, 0, len(ids))
	for _, s := range ids {
		id, err := ParseID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// Int64s converts identities into the parameter shape the driver expects.
func Int64s(ids []ID) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
