// Package similarity decides whether two entities of the same kind may be
// the same real-world thing, and which of two duplicates to keep.
//
// A Comparator's candidate predicate must be symmetric and must never
// error; malformed entities (empty names) are simply never candidates.
// Compare must be a strict total order: it returns 0 only for the same
// entity, so sorting a cluster is deterministic.
package similarity

import (
	"github.com/google/uuid"

	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
)

// DefaultThreshold is the minimum name similarity for two names to be
// treated as the same.
const DefaultThreshold = 0.8

// Comparator is the similarity contract for one kind of entity.
type Comparator[T any] interface {
	// IsCandidateDuplicate reports whether a and b may denote the same entity.
	IsCandidateDuplicate(a, b T) bool
	// Compare orders duplicates: negative when a is preferred over b.
	Compare(a, b T) int
	// ID returns the identity of an entity, used as the final tie-break.
	ID(e T) uuid.UUID
}

// preferMore ranks the larger count first.
func preferMore(a, b int) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

// CompareID orders identifiers bytewise. It is the last resort of every
// Compare so that only an entity compares equal to itself.
func CompareID(a, b uuid.UUID) int {
	return domain.CompareUUID(a, b)
}
