package similarity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	labstrings "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/strings"
)

// OrganizationCandidate is an organization with the number of memberships
// and sub-organizations pointing at it.
type OrganizationCandidate struct {
	Organization *models.ResearchOrganization
	References   int
}

// JournalCandidate is a journal with the number of papers it published.
type JournalCandidate struct {
	Journal    *models.Journal
	References int
}

// ConferenceCandidate is a conference with the number of papers it published.
type ConferenceCandidate struct {
	Conference *models.Conference
	References int
}

// namesMatch compares normalized names exactly, then by similarity.
func namesMatch(a, b string, threshold float64) bool {
	na, nb := labstrings.Normalize(a), labstrings.Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || labstrings.Similarity(na, nb) >= threshold
}

// acronymsMatch compares acronyms exactly after normalization.
func acronymsMatch(a, b string) bool {
	na, nb := labstrings.Normalize(a), labstrings.Normalize(b)
	return na != "" && na == nb
}

// OrganizationComparator matches organizations by acronym or name.
type OrganizationComparator struct {
	threshold float64
}

func NewOrganizationComparator(threshold float64) OrganizationComparator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return OrganizationComparator{threshold: threshold}
}

func (c OrganizationComparator) ID(e OrganizationCandidate) uuid.UUID {
	return uuid.UUID(e.Organization.ID)
}

// IsCandidateDuplicate: a shared national identifier decides; otherwise an
// equal acronym or a similar name.
func (c OrganizationComparator) IsCandidateDuplicate(a, b OrganizationCandidate) bool {
	oa, ob := a.Organization, b.Organization
	if oa == nil || ob == nil || oa.ID == ob.ID {
		return false
	}
	if ra, rb := strings.TrimSpace(oa.RNSR), strings.TrimSpace(ob.RNSR); ra != "" && rb != "" {
		return strings.EqualFold(ra, rb)
	}
	return acronymsMatch(oa.Acronym, ob.Acronym) || namesMatch(oa.Name, ob.Name, c.threshold)
}

// Compare prefers the most referenced organization, then the smaller identifier.
func (c OrganizationComparator) Compare(a, b OrganizationCandidate) int {
	if r := preferMore(a.References, b.References); r != 0 {
		return r
	}
	return CompareID(c.ID(a), c.ID(b))
}

// JournalComparator matches journals by ISSN or name.
type JournalComparator struct {
	threshold float64
}

func NewJournalComparator(threshold float64) JournalComparator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return JournalComparator{threshold: threshold}
}

func (c JournalComparator) ID(e JournalCandidate) uuid.UUID {
	return uuid.UUID(e.Journal.ID)
}

// IsCandidateDuplicate: journals with different ISSNs are distinct,
// equal ISSNs are the same journal, otherwise names decide.
func (c JournalComparator) IsCandidateDuplicate(a, b JournalCandidate) bool {
	ja, jb := a.Journal, b.Journal
	if ja == nil || jb == nil || ja.ID == jb.ID {
		return false
	}
	ia, ib := normalizeISSN(ja.ISSN), normalizeISSN(jb.ISSN)
	if ia != "" && ib != "" {
		return ia == ib
	}
	return namesMatch(ja.Name, jb.Name, c.threshold)
}

// Compare prefers the journal with more papers, then the smaller identifier.
func (c JournalComparator) Compare(a, b JournalCandidate) int {
	if r := preferMore(a.References, b.References); r != 0 {
		return r
	}
	return CompareID(c.ID(a), c.ID(b))
}

// ConferenceComparator matches conferences by acronym or name.
type ConferenceComparator struct {
	threshold float64
}

func NewConferenceComparator(threshold float64) ConferenceComparator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return ConferenceComparator{threshold: threshold}
}

func (c ConferenceComparator) ID(e ConferenceCandidate) uuid.UUID {
	return uuid.UUID(e.Conference.ID)
}

func (c ConferenceComparator) IsCandidateDuplicate(a, b ConferenceCandidate) bool {
	ca, cb := a.Conference, b.Conference
	if ca == nil || cb == nil || ca.ID == cb.ID {
		return false
	}
	return acronymsMatch(ca.Acronym, cb.Acronym) || namesMatch(ca.Name, cb.Name, c.threshold)
}

// Compare prefers the conference with more papers, then the smaller identifier.
func (c ConferenceComparator) Compare(a, b ConferenceCandidate) int {
	if r := preferMore(a.References, b.References); r != 0 {
		return r
	}
	return CompareID(c.ID(a), c.ID(b))
}

func normalizeISSN(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "-", "")
}
