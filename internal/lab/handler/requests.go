package handler

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/membership"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
)

// maxMergeSources bounds a single merge request.
const maxMergeSources = 100

// ClassificationRequest is the optional classification block of a membership.
type ClassificationRequest struct {
	CNUSection   int    `json:"cnu_section"`
	CoNRSSection int    `json:"conrs_section"`
	FrenchBAP    string `json:"french_bap"`
}

func (c *ClassificationRequest) parse() (models.Classification, error) {
	out := models.Classification{
		CNUSection:   c.CNUSection,
		CoNRSSection: c.CoNRSSection,
		FrenchBAP:    models.FrenchBAP(strings.ToUpper(strings.TrimSpace(c.FrenchBAP))),
	}
	if !out.Valid() {
		return models.Classification{}, dErrors.New(dErrors.CodeValidation, "invalid classification")
	}
	return out, nil
}

// OpenMembershipRequest is the body of POST /memberships.
type OpenMembershipRequest struct {
	PersonID          string                 `json:"person_id"`
	OrganizationID    string                 `json:"organization_id"`
	Status            string                 `json:"status"`
	Since             string                 `json:"since"`
	To                string                 `json:"to"`
	Classification    *ClassificationRequest `json:"classification"`
	Responsibility    string                 `json:"responsibility"`
	PermanentPosition *bool                  `json:"permanent_position"`
	MainPosition      bool                   `json:"main_position"`
	CloseOnConflict   bool                   `json:"close_on_conflict"`

	parsed membership.OpenRequest
}

// Validate parses identifiers, enums and dates. Enum values are matched
// case-insensitively.
func (r *OpenMembershipRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	person, err := domain.ParsePersonID(strings.TrimSpace(r.PersonID))
	if err != nil {
		return err
	}
	org, err := domain.ParseOrganizationID(strings.TrimSpace(r.OrganizationID))
	if err != nil {
		return err
	}
	status, err := parseStatus(r.Status)
	if err != nil {
		return err
	}
	since, err := parseOptionalDay("since", r.Since)
	if err != nil {
		return err
	}
	to, err := parseOptionalDay("to", r.To)
	if err != nil {
		return err
	}
	responsibility, err := parseResponsibility(r.Responsibility)
	if err != nil {
		return err
	}
	var classification models.Classification
	if r.Classification != nil {
		if classification, err = r.Classification.parse(); err != nil {
			return err
		}
	}

	r.parsed = membership.OpenRequest{
		PersonID:          person,
		OrganizationID:    org,
		Status:            status,
		Since:             since,
		To:                to,
		Classification:    classification,
		Responsibility:    responsibility,
		PermanentPosition: r.PermanentPosition,
		MainPosition:      r.MainPosition,
		CloseOnConflict:   r.CloseOnConflict,
	}
	return nil
}

// Parsed returns the validated service request.
func (r *OpenMembershipRequest) Parsed() membership.OpenRequest {
	return r.parsed
}

// UpdateMembershipRequest is the body of PATCH /memberships/{id}. Since and
// To are kept raw so an explicit null (open bound) can be told apart from an
// absent field.
type UpdateMembershipRequest struct {
	OrganizationID    *string                `json:"organization_id"`
	Status            *string                `json:"status"`
	Since             json.RawMessage        `json:"since"`
	To                json.RawMessage        `json:"to"`
	Classification    *ClassificationRequest `json:"classification"`
	Responsibility    *string                `json:"responsibility"`
	PermanentPosition *bool                  `json:"permanent_position"`
	MainPosition      *bool                  `json:"main_position"`

	parsed membership.UpdateRequest
}

// Validate parses every supplied field.
func (r *UpdateMembershipRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	var err error
	out := membership.UpdateRequest{
		PermanentPosition: r.PermanentPosition,
		MainPosition:      r.MainPosition,
	}
	if r.OrganizationID != nil {
		org, err := domain.ParseOrganizationID(strings.TrimSpace(*r.OrganizationID))
		if err != nil {
			return err
		}
		out.OrganizationID = &org
	}
	if r.Status != nil {
		status, err := parseStatus(*r.Status)
		if err != nil {
			return err
		}
		out.Status = &status
	}
	if out.Since, err = parseBound("since", r.Since); err != nil {
		return err
	}
	if out.To, err = parseBound("to", r.To); err != nil {
		return err
	}
	if r.Classification != nil {
		classification, err := r.Classification.parse()
		if err != nil {
			return err
		}
		out.Classification = &classification
	}
	if r.Responsibility != nil {
		responsibility, err := parseResponsibility(*r.Responsibility)
		if err != nil {
			return err
		}
		out.Responsibility = &responsibility
	}
	r.parsed = out
	return nil
}

// Parsed returns the validated service request.
func (r *UpdateMembershipRequest) Parsed() membership.UpdateRequest {
	return r.parsed
}

// MergeRequest is the body of POST /merges/{kind}.
type MergeRequest struct {
	SourceIDs []string `json:"source_ids"`
	TargetID  string   `json:"target_id"`

	sources []uuid.UUID
	target  uuid.UUID
}

// Validate parses the identifiers. Kind checks and the empty source set
// are left to the service, which resolves every id against the store.
func (r *MergeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.SourceIDs) > maxMergeSources {
		return dErrors.New(dErrors.CodeValidation, "too many source_ids")
	}
	target, err := parseID("target_id", r.TargetID)
	if err != nil {
		return err
	}
	r.target = target
	r.sources = make([]uuid.UUID, 0, len(r.SourceIDs))
	for _, raw := range r.SourceIDs {
		id, err := parseID("source_ids", raw)
		if err != nil {
			return err
		}
		r.sources = append(r.sources, id)
	}
	return nil
}

// Sources returns the parsed source ids.
func (r *MergeRequest) Sources() []uuid.UUID {
	return r.sources
}

// Target returns the parsed target id.
func (r *MergeRequest) Target() uuid.UUID {
	return r.target
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	return id, nil
}

func parseStatus(raw string) (models.MemberStatus, error) {
	status := models.MemberStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if status == "" {
		return "", dErrors.New(dErrors.CodeValidation, "status is required")
	}
	if !status.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown status: "+raw)
	}
	return status, nil
}

func parseResponsibility(raw string) (models.Responsibility, error) {
	responsibility := models.Responsibility(strings.ToUpper(strings.TrimSpace(raw)))
	if !responsibility.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown responsibility: "+raw)
	}
	return responsibility, nil
}

func parseOptionalDay(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	day, err := models.ParseDay(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, field+" must be a date formatted as YYYY-MM-DD")
	}
	return &day, nil
}

// parseBound maps an absent field to no edit, null or "" to an open bound,
// and a date string to a closed bound.
func parseBound(field string, raw json.RawMessage) (membership.Bound, error) {
	if len(raw) == 0 {
		return membership.Bound{}, nil
	}
	if string(raw) == "null" {
		return membership.Bound{Set: true}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return membership.Bound{}, dErrors.New(dErrors.CodeValidation, field+" must be a date string or null")
	}
	day, err := parseOptionalDay(field, s)
	if err != nil {
		return membership.Bound{}, err
	}
	return membership.Bound{Set: true, Day: day}, nil
}
