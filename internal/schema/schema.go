// Package schema holds the closed vocabulary of node labels, relationship
// types and well-known property names. Only tokens from this package are ever
// interpolated into Cypher text; everything else is bound as a parameter.
package schema

import (
	"fmt"
	"strings"

	"github.com/zero-day-ai/fraudgraph/internal/graph"
)

// Label is a node label from the closed vocabulary.
type Label string

// Entity kinds.
const (
	LabelClient      Label = "Client"
	LabelAccount     Label = "Account"
	LabelDevice      Label = "Device"
	LabelLocation    Label = "Location"
	LabelTransaction Label = "Transaction"
)

// Marker labels a caller may attach in addition to the primary label.
const (
	LabelFlagged     Label = "Flagged"
	LabelUnderReview Label = "UnderReview"
	LabelVerified    Label = "Verified"
)

var labels = []Label{
	LabelClient, LabelAccount, LabelDevice, LabelLocation, LabelTransaction,
	LabelFlagged, LabelUnderReview, LabelVerified,
}

// EntityLabels returns the primary labels, one per entity kind.
func EntityLabels() []Label {
	return []Label{LabelClient, LabelAccount, LabelDevice, LabelLocation, LabelTransaction}
}

// Labels returns the full label vocabulary.
func Labels() []Label {
	out := make([]Label, len(labels))
	copy(out, labels)
	return out
}

// String returns the label as written in Cypher.
func (l Label) String() string {
	return string(l)
}

// Valid reports whether l is in the vocabulary.
func (l Label) Valid() bool {
	for _, known := range labels {
		if l == known {
			return true
		}
	}
	return false
}

// IsEntity reports whether l is a primary entity label.
func (l Label) IsEntity() bool {
	for _, known := range EntityLabels() {
		if l == known {
			return true
		}
	}
	return false
}

// ParseLabel converts a boundary string into a Label. Matching is
// case-insensitive; anything outside the vocabulary is a ValidationError.
func ParseLabel(s string) (Label, error) {
	trimmed := strings.TrimSpace(s)
	for _, known := range labels {
		if strings.EqualFold(trimmed, string(known)) {
			return known, nil
		}
	}
	return "", graph.NewValidationError(fmt.Sprintf("unknown label %q", s))
}

// ParseLabels converts every string, failing on the first unknown label.
func ParseLabels(ss []string) ([]Label, error) {
	out := make([]Label, 0, len(ss))
	for _, s := range ss {
		l, err := ParseLabel(s)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// LabelExpr renders ":A:B" for the given labels. Duplicates are dropped and
// order preserved.
func LabelExpr(ls ...Label) string {
	var b strings.Builder
	seen := make(map[Label]bool, len(ls))
	for _, l := range ls {
		if seen[l] {
			continue
		}
		seen[l] = true
		b.WriteByte(':')
		b.WriteString(string(l))
	}
	return b.String()
}

// RelType is a relationship type from the closed vocabulary.
type RelType string

const (
	RelOwns       RelType = "OWNS"        // Client -> Account
	RelFrom       RelType = "FROM"        // Transaction -> source Account
	RelTo         RelType = "TO"          // Transaction -> destination Account
	RelMadeFrom   RelType = "MADE_FROM"   // Transaction -> Device
	RelOccurredAt RelType = "OCCURRED_AT" // Transaction -> Location
	RelIncludes   RelType = "INCLUDES"
	RelKnows      RelType = "KNOWS"
)

var relTypes = []RelType{
	RelOwns, RelFrom, RelTo, RelMadeFrom, RelOccurredAt, RelIncludes, RelKnows,
}

// RelTypes returns the full relationship type vocabulary.
func RelTypes() []RelType {
	out := make([]RelType, len(relTypes))
	copy(out, relTypes)
	return out
}

func (r RelType) String() string {
	return string(r)
}

// Valid reports whether r is in the vocabulary.
func (r RelType) Valid() bool {
	for _, known := range relTypes {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRelType converts a boundary string into a RelType. Matching is
// case-insensitive and accepts "made-from" for MADE_FROM.
func ParseRelType(s string) (RelType, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), "-", "_")
	for _, known := range relTypes {
		if strings.EqualFold(normalized, string(known)) {
			return known, nil
		}
	}
	return "", graph.NewValidationError(fmt.Sprintf("unknown relationship type %q", s))
}
