package similarity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	labstrings "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/strings"
)

// PersonCandidate is a person with the usage counts used to pick a
// merge target.
type PersonCandidate struct {
	Person            *models.Person
	Authorships       int
	ActiveMemberships int
}

// PersonComparator matches persons by name, or by ORCID when both have one.
type PersonComparator struct {
	threshold float64
	tieBreak  func(a, b *models.Person) int
}

// PersonOption configures a PersonComparator.
type PersonOption func(*PersonComparator)

// WithThreshold sets the minimum name similarity, clamped to (0,1].
func WithThreshold(t float64) PersonOption {
	return func(c *PersonComparator) {
		if t > 0 && t <= 1 {
			c.threshold = t
		}
	}
}

// WithTieBreak adds a caller-defined order applied after the usage counts
// and before the identifier.
func WithTieBreak(fn func(a, b *models.Person) int) PersonOption {
	return func(c *PersonComparator) {
		c.tieBreak = fn
	}
}

func NewPersonComparator(opts ...PersonOption) PersonComparator {
	c := PersonComparator{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c PersonComparator) Threshold() float64 {
	return c.threshold
}

func (c PersonComparator) ID(e PersonCandidate) uuid.UUID {
	return uuid.UUID(e.Person.ID)
}

// IsCandidateDuplicate: two persons with different ORCIDs are distinct.
// Otherwise last names must be equal or similar, and first names must be
// equal, similar, or compatible initials ("J." against "Jean").
func (c PersonComparator) IsCandidateDuplicate(a, b PersonCandidate) bool {
	if a.Person == nil || b.Person == nil || a.Person.ID == b.Person.ID {
		return false
	}
	oa, ob := normalizeORCID(a.Person.ORCID), normalizeORCID(b.Person.ORCID)
	if oa != "" && ob != "" {
		return oa == ob
	}
	return c.sameName(a.Person, b.Person)
}

func (c PersonComparator) sameName(a, b *models.Person) bool {
	la, lb := labstrings.Normalize(a.LastName), labstrings.Normalize(b.LastName)
	if la == "" || lb == "" {
		return false
	}
	if la != lb && labstrings.Similarity(la, lb) < c.threshold {
		return false
	}
	return c.sameFirstName(a.FirstName, b.FirstName)
}

func (c PersonComparator) sameFirstName(a, b string) bool {
	fa, fb := labstrings.Normalize(a), labstrings.Normalize(b)
	if fa == "" || fb == "" {
		return false
	}
	if fa == fb || labstrings.Similarity(fa, fb) >= c.threshold {
		return true
	}
	// initials: "J." matches "Jean", "J.-P." matches "Jean-Pierre"
	if labstrings.IsInitialsOnly(a) || labstrings.IsInitialsOnly(b) {
		return labstrings.Initials(a) == labstrings.Initials(b)
	}
	return false
}

// Compare prefers more authorships, then more active memberships, then the
// optional tie-break, then the smaller identifier.
func (c PersonComparator) Compare(a, b PersonCandidate) int {
	if r := preferMore(a.Authorships, b.Authorships); r != 0 {
		return r
	}
	if r := preferMore(a.ActiveMemberships, b.ActiveMemberships); r != 0 {
		return r
	}
	if c.tieBreak != nil {
		if r := c.tieBreak(a.Person, b.Person); r != 0 {
			return r
		}
	}
	return CompareID(c.ID(a), c.ID(b))
}

func normalizeORCID(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "HTTPS://ORCID.ORG/")
	s = strings.TrimPrefix(s, "HTTP://ORCID.ORG/")
	return strings.ReplaceAll(s, "-", "")
}
