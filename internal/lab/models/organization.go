package models

import (
	"strings"
	"time"

	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
)

// OrganizationType classifies research organizations.
type OrganizationType string

const (
	OrganizationUnknown    OrganizationType = ""
	OrganizationLaboratory OrganizationType = "LABORATORY"
	OrganizationTeam       OrganizationType = "RESEARCH_TEAM"
	OrganizationUniversity OrganizationType = "UNIVERSITY"
	OrganizationFaculty    OrganizationType = "FACULTY"
	OrganizationInstitute  OrganizationType = "RESEARCH_INSTITUTE"
	OrganizationCompany    OrganizationType = "COMPANY"
	OrganizationOther      OrganizationType = "OTHER"
)

// ResearchOrganization is a node of the organization tree. The tree is
// stored as parent links only; children are found by querying the links.
//
// Invariants:
//   - Acronym or Name is set
//   - following SuperOrganizationID never leads back to the same node
type ResearchOrganization struct {
	ID                  domain.OrganizationID  `json:"id"`
	Acronym             string                 `json:"acronym,omitempty"`
	Name                string                 `json:"name"`
	Type                OrganizationType       `json:"type,omitempty"`
	Country             string                 `json:"country,omitempty"`
	RNSR                string                 `json:"rnsr,omitempty"`
	NationalIdentifier  string                 `json:"national_identifier,omitempty"`
	Description         string                 `json:"description,omitempty"`
	URL                 string                 `json:"url,omitempty"`
	SuperOrganizationID *domain.OrganizationID `json:"super_organization_id,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// NewOrganization requires an acronym or a name.
func NewOrganization(id domain.OrganizationID, acronym, name string, now time.Time) (*ResearchOrganization, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization ID required")
	}
	acronym, name = strings.TrimSpace(acronym), strings.TrimSpace(name)
	if acronym == "" && name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "acronym or name is required")
	}
	return &ResearchOrganization{
		ID:        id,
		Acronym:   acronym,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AcronymOrName returns the acronym when set, the name otherwise.
func (o *ResearchOrganization) AcronymOrName() string {
	if o.Acronym != "" {
		return o.Acronym
	}
	return o.Name
}

// BackfillFrom copies every attribute of src that is empty on o, except
// the parent link, which the merge service resolves separately.
func (o *ResearchOrganization) BackfillFrom(src *ResearchOrganization) bool {
	changed := false
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			changed = true
		}
	}
	fill(&o.Acronym, src.Acronym)
	fill(&o.Name, src.Name)
	fill(&o.Country, src.Country)
	fill(&o.RNSR, src.RNSR)
	fill(&o.NationalIdentifier, src.NationalIdentifier)
	fill(&o.Description, src.Description)
	fill(&o.URL, src.URL)
	if o.Type == OrganizationUnknown && src.Type != OrganizationUnknown {
		o.Type = src.Type
		changed = true
	}
	return changed
}

// Clone returns a deep copy.
func (o *ResearchOrganization) Clone() *ResearchOrganization {
	if o == nil {
		return nil
	}
	c := *o
	if o.SuperOrganizationID != nil {
		sup := *o.SuperOrganizationID
		c.SuperOrganizationID = &sup
	}
	return &c
}
