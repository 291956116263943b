package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers irreversible changes to the lab records.
	// These are persisted synchronously and the operation fails with them.
	// Examples: merges, which delete the merged entities.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine record edits.
	// Examples: membership opened, updated, closed or deleted.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// Kind is the kind of entity the event is about ("person", "membership").
	Kind string
	// SubjectID identifies the entity the event is about.
	SubjectID string
	// RelatedIDs lists other entities touched by the action, such as the
	// sources of a merge or the membership closed to make room.
	RelatedIDs []string
	Reason     string
	RequestID  string
	ActorID    string
}

type AuditEvent string

const (
	// Membership events
	EventMembershipOpened     AuditEvent = "membership_opened"
	EventMembershipAutoClosed AuditEvent = "membership_auto_closed"
	EventMembershipUpdated    AuditEvent = "membership_updated"
	EventMembershipDeleted    AuditEvent = "membership_deleted"

	// Merge events
	EventPersonsMerged       AuditEvent = "persons_merged"
	EventOrganizationsMerged AuditEvent = "organizations_merged"
	EventJournalsMerged      AuditEvent = "journals_merged"
	EventConferencesMerged   AuditEvent = "conferences_merged"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventPersonsMerged:       CategoryCompliance,
	EventOrganizationsMerged: CategoryCompliance,
	EventJournalsMerged:      CategoryCompliance,
	EventConferencesMerged:   CategoryCompliance,

	EventMembershipOpened:     CategoryOperations,
	EventMembershipAutoClosed: CategoryOperations,
	EventMembershipUpdated:    CategoryOperations,
	EventMembershipDeleted:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	// ListBySubject returns the events about one entity, oldest first.
	ListBySubject(ctx context.Context, subjectID string) ([]Event, error)
	// ListRecent returns at most limit events, most recent first.
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Normalize fills the identifier, timestamp and category of an event
// about to be stored.
func Normalize(event Event, now time.Time) Event {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
	event.Category = AuditEvent(event.Action).Category()
	return event
}
