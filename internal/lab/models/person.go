package models

import (
	"strings"
	"time"

	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
)

// Gender of a person, as recorded by the lab.
type Gender string

const (
	GenderUnknown      Gender = ""
	GenderFemale       Gender = "FEMALE"
	GenderMale         Gender = "MALE"
	GenderNotSpecified Gender = "NOT_SPECIFIED"
)

// RankingIndicators holds bibliometric indicators per source.
type RankingIndicators struct {
	WosHIndex          int `json:"wos_h_index,omitempty"`
	ScopusHIndex       int `json:"scopus_h_index,omitempty"`
	GoogleScholarIndex int `json:"google_scholar_h_index,omitempty"`
	WosCitations       int `json:"wos_citations,omitempty"`
	ScopusCitations    int `json:"scopus_citations,omitempty"`
	ScholarCitations   int `json:"google_scholar_citations,omitempty"`
}

// Person is a lab member or an external author.
//
// The ORCID is the authoritative identity when present; the full name is
// only a fallback used by the duplicate detector.
type Person struct {
	ID              domain.PersonID   `json:"id"`
	FirstName       string            `json:"first_name"`
	LastName        string            `json:"last_name"`
	Gender          Gender            `json:"gender,omitempty"`
	Email           string            `json:"email,omitempty"`
	ORCID           string            `json:"orcid,omitempty"`
	ResearcherID    string            `json:"researcher_id,omitempty"`
	ScopusID        string            `json:"scopus_id,omitempty"`
	GoogleScholarID string            `json:"google_scholar_id,omitempty"`
	IDHALID         string            `json:"idhal,omitempty"`
	OfficePhone     string            `json:"office_phone,omitempty"`
	MobilePhone     string            `json:"mobile_phone,omitempty"`
	Indicators      RankingIndicators `json:"indicators"`
	Validated       bool              `json:"validated"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewPerson requires a last name. The first name may be empty for
// persons only known by an initial-free citation.
func NewPerson(id domain.PersonID, firstName, lastName string, now time.Time) (*Person, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "person ID required")
	}
	lastName = strings.TrimSpace(lastName)
	if lastName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "last name is required")
	}
	return &Person{
		ID:        id,
		FirstName: strings.TrimSpace(firstName),
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FullName returns "First Last".
func (p *Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// BackfillFrom copies every attribute of src that is empty on p.
// Names and identity are never touched. Reports whether p changed.
func (p *Person) BackfillFrom(src *Person) bool {
	changed := false
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			changed = true
		}
	}
	fill(&p.Email, src.Email)
	fill(&p.ORCID, src.ORCID)
	fill(&p.ResearcherID, src.ResearcherID)
	fill(&p.ScopusID, src.ScopusID)
	fill(&p.GoogleScholarID, src.GoogleScholarID)
	fill(&p.IDHALID, src.IDHALID)
	fill(&p.OfficePhone, src.OfficePhone)
	fill(&p.MobilePhone, src.MobilePhone)
	if p.Gender == GenderUnknown && src.Gender != GenderUnknown {
		p.Gender = src.Gender
		changed = true
	}
	fillInt := func(dst *int, v int) {
		if *dst == 0 && v != 0 {
			*dst = v
			changed = true
		}
	}
	fillInt(&p.Indicators.WosHIndex, src.Indicators.WosHIndex)
	fillInt(&p.Indicators.ScopusHIndex, src.Indicators.ScopusHIndex)
	fillInt(&p.Indicators.GoogleScholarIndex, src.Indicators.GoogleScholarIndex)
	fillInt(&p.Indicators.WosCitations, src.Indicators.WosCitations)
	fillInt(&p.Indicators.ScopusCitations, src.Indicators.ScopusCitations)
	fillInt(&p.Indicators.ScholarCitations, src.Indicators.ScholarCitations)
	if !p.Validated && src.Validated {
		p.Validated = true
		changed = true
	}
	return changed
}

// Clone returns a copy.
func (p *Person) Clone() *Person {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
