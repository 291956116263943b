package models

import (
	"time"

	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
)

// Membership places a person in a research organization for a range of days.
//
// Invariants:
//   - PersonID and OrganizationID are set
//   - Status is a known MemberStatus
//   - Since <= To when both are set
//
// At most one membership of a (person, organization) pair may be active on
// any given day. That rule spans several records and is enforced by the
// membership service at write time, not here.
type Membership struct {
	ID                domain.MembershipID   `json:"id"`
	PersonID          domain.PersonID       `json:"person_id"`
	OrganizationID    domain.OrganizationID `json:"organization_id"`
	Status            MemberStatus          `json:"status"`
	Classification    Classification        `json:"classification"`
	Responsibility    Responsibility        `json:"responsibility,omitempty"`
	PermanentPosition bool                  `json:"permanent_position"`
	MainPosition      bool                  `json:"main_position"`
	Since             *time.Time            `json:"since,omitempty"`
	To                *time.Time            `json:"to,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// NewMembership validates its input and returns a membership with
// day-truncated bounds. Interval ordering is checked by the caller so the
// resulting error can carry the offending dates.
func NewMembership(id domain.MembershipID, person domain.PersonID, org domain.OrganizationID, status MemberStatus, since, to *time.Time, now time.Time) (*Membership, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "membership ID required")
	}
	if person.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "person ID required")
	}
	if org.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "organization ID required")
	}
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown member status")
	}
	iv := NewInterval(since, to)
	return &Membership{
		ID:                id,
		PersonID:          person,
		OrganizationID:    org,
		Status:            status,
		PermanentPosition: status.IsPermanentByDefault(),
		Since:             iv.Since,
		To:                iv.To,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Interval returns the membership bounds.
func (m *Membership) Interval() Interval {
	return Interval{Since: m.Since, To: m.To}
}

// SetInterval replaces both bounds, truncated to days.
func (m *Membership) SetInterval(iv Interval) {
	iv = NewInterval(iv.Since, iv.To)
	m.Since, m.To = iv.Since, iv.To
}

// ActiveAt reports whether day lies within [Since, To].
func (m *Membership) ActiveAt(day time.Time) bool {
	return m.Interval().Contains(day)
}

// IsFormer reports whether the membership ended before day.
func (m *Membership) IsFormer(day time.Time) bool {
	return m.To != nil && m.To.Before(Day(day))
}

// IsFuture reports whether the membership starts after day.
func (m *Membership) IsFuture(day time.Time) bool {
	return m.Since != nil && m.Since.After(Day(day))
}

// Overlaps reports whether the membership shares a day with iv.
func (m *Membership) Overlaps(iv Interval) bool {
	return m.Interval().Overlaps(iv)
}

// CloseAt ends the membership on pivot. A start date after pivot is pulled
// back to pivot so the record stays ordered.
func (m *Membership) CloseAt(pivot time.Time, now time.Time) {
	pivot = Day(pivot)
	m.To = &pivot
	if m.Since != nil && m.Since.After(pivot) {
		since := pivot
		m.Since = &since
	}
	m.UpdatedAt = now
}

// Clone returns a deep copy.
func (m *Membership) Clone() *Membership {
	if m == nil {
		return nil
	}
	c := *m
	c.Since = cloneDay(m.Since)
	c.To = cloneDay(m.To)
	return &c
}
