package domain

import (
	"strings"

	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
)

// Kind identifies a family of mergeable entities.
// Invariant: the value must be one of the supported kinds.
//
// Usage: construct via ParseKind at trust boundaries.
type Kind string

const (
	KindPerson       Kind = "person"
	KindOrganization Kind = "organization"
	KindJournal      Kind = "journal"
	KindConference   Kind = "conference"
)

// Kinds lists every mergeable kind in a stable order.
var Kinds = []Kind{KindPerson, KindOrganization, KindJournal, KindConference}

var validKinds = map[Kind]bool{
	KindPerson:       true,
	KindOrganization: true,
	KindJournal:      true,
	KindConference:   true,
}

// ParseKind accepts a kind name case-insensitively. Plural forms used by the
// HTTP routes ("persons", "organizations") are accepted too.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "kind cannot be empty")
	}
	k := Kind(strings.TrimSuffix(s, "s"))
	if s == "people" {
		k = KindPerson
	}
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid kind: "+s)
	}
	return k, nil
}

func (k Kind) IsValid() bool {
	return validKinds[k]
}

func (k Kind) String() string {
	return string(k)
}
