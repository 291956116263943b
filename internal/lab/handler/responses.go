package handler

import (
	"time"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/duplicate"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/membership"
)

// MembershipResponse renders a membership with day-formatted bounds.
type MembershipResponse struct {
	ID                string                `json:"id"`
	PersonID          string                `json:"person_id"`
	OrganizationID    string                `json:"organization_id"`
	Status            string                `json:"status"`
	Classification    models.Classification `json:"classification"`
	Responsibility    string                `json:"responsibility,omitempty"`
	PermanentPosition bool                  `json:"permanent_position"`
	MainPosition      bool                  `json:"main_position"`
	Since             *string               `json:"since"`
	To                *string               `json:"to"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// OpenMembershipResponse is returned by POST /memberships.
type OpenMembershipResponse struct {
	Membership *MembershipResponse `json:"membership"`
	Closed     *MembershipResponse `json:"closed,omitempty"`
}

// MembershipListResponse wraps a list of memberships.
type MembershipListResponse struct {
	Memberships []*MembershipResponse `json:"memberships"`
}

// ClusterListResponse wraps the duplicate clusters of one kind.
type ClusterListResponse struct {
	Kind     string              `json:"kind"`
	Clusters []duplicate.Cluster `json:"clusters"`
}

// MergeResponse acknowledges a merge.
type MergeResponse struct {
	Kind    string   `json:"kind"`
	Target  string   `json:"target_id"`
	Sources []string `json:"source_ids"`
}

// FromMembership converts a domain membership.
func FromMembership(m *models.Membership) *MembershipResponse {
	if m == nil {
		return nil
	}
	return &MembershipResponse{
		ID:                m.ID.String(),
		PersonID:          m.PersonID.String(),
		OrganizationID:    m.OrganizationID.String(),
		Status:            m.Status.String(),
		Classification:    m.Classification,
		Responsibility:    string(m.Responsibility),
		PermanentPosition: m.PermanentPosition,
		MainPosition:      m.MainPosition,
		Since:             formatDay(m.Since),
		To:                formatDay(m.To),
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromOpenResult converts the result of an open.
func FromOpenResult(res *membership.OpenResult) *OpenMembershipResponse {
	return &OpenMembershipResponse{
		Membership: FromMembership(res.Membership),
		Closed:     FromMembership(res.Closed),
	}
}

// FromMemberships converts a list, never rendering null.
func FromMemberships(ms []*models.Membership) *MembershipListResponse {
	out := make([]*MembershipResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, FromMembership(m))
	}
	return &MembershipListResponse{Memberships: out}
}

func formatDay(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(models.DateLayout)
	return &s
}
