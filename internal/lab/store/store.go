// Package store is the entity store of the lab domain: persons,
// organizations, memberships, authorships, journals, conferences and
// papers, addressed by typed identifiers.
//
// Stores only guarantee referential integrity. Rules spanning several
// records (one active membership per pair, acyclic organization tree)
// belong to the services, which run their checks inside RunInTx.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
)

// Store is the full entity store contract. Every Find returns an error
// wrapping sentinel.ErrNotFound when the entity is absent. Returned
// entities are copies; mutate them and Save to persist.
type Store interface {
	PersonStore
	OrganizationStore
	MembershipStore
	AuthorshipStore
	VenueStore
	PaperStore

	// ResolveKind reports which kind of mergeable entity owns id.
	ResolveKind(ctx context.Context, id uuid.UUID) (domain.Kind, error)
}

type PersonStore interface {
	FindPersonByID(ctx context.Context, id domain.PersonID) (*models.Person, error)
	ListPersons(ctx context.Context) ([]*models.Person, error)
	SavePerson(ctx context.Context, p *models.Person) error
	// DeletePerson removes the person with its memberships and authorships.
	DeletePerson(ctx context.Context, id domain.PersonID) error
	CountAuthorshipsByPerson(ctx context.Context) (map[domain.PersonID]int, error)
	CountActiveMembershipsByPerson(ctx context.Context, day time.Time) (map[domain.PersonID]int, error)
}

type OrganizationStore interface {
	FindOrganizationByID(ctx context.Context, id domain.OrganizationID) (*models.ResearchOrganization, error)
	ListOrganizations(ctx context.Context) ([]*models.ResearchOrganization, error)
	ListSubOrganizations(ctx context.Context, id domain.OrganizationID) ([]*models.ResearchOrganization, error)
	SaveOrganization(ctx context.Context, o *models.ResearchOrganization) error
	// DeleteOrganization removes the organization and its memberships and
	// detaches its direct sub-organizations.
	DeleteOrganization(ctx context.Context, id domain.OrganizationID) error
	// CountOrganizationReferences counts memberships and sub-organizations per organization.
	CountOrganizationReferences(ctx context.Context) (map[domain.OrganizationID]int, error)
}

type MembershipStore interface {
	FindMembershipByID(ctx context.Context, id domain.MembershipID) (*models.Membership, error)
	ListMembershipsByPerson(ctx context.Context, id domain.PersonID) ([]*models.Membership, error)
	ListMembershipsByOrganization(ctx context.Context, id domain.OrganizationID) ([]*models.Membership, error)
	ListMembershipsForPair(ctx context.Context, person domain.PersonID, org domain.OrganizationID) ([]*models.Membership, error)
	SaveMembership(ctx context.Context, m *models.Membership) error
	DeleteMembership(ctx context.Context, id domain.MembershipID) error
}

type AuthorshipStore interface {
	ListAuthorshipsByPerson(ctx context.Context, id domain.PersonID) ([]*models.Authorship, error)
	ListAuthorshipsByPaper(ctx context.Context, id domain.PaperID) ([]*models.Authorship, error)
	SaveAuthorship(ctx context.Context, a *models.Authorship) error
	DeleteAuthorship(ctx context.Context, id domain.AuthorshipID) error
}

// VenueStore covers journals and conferences.
type VenueStore interface {
	FindJournalByID(ctx context.Context, id domain.JournalID) (*models.Journal, error)
	ListJournals(ctx context.Context) ([]*models.Journal, error)
	SaveJournal(ctx context.Context, j *models.Journal) error
	// DeleteJournal removes the journal and detaches its papers.
	DeleteJournal(ctx context.Context, id domain.JournalID) error
	CountPapersByJournal(ctx context.Context) (map[domain.JournalID]int, error)

	FindConferenceByID(ctx context.Context, id domain.ConferenceID) (*models.Conference, error)
	ListConferences(ctx context.Context) ([]*models.Conference, error)
	SaveConference(ctx context.Context, c *models.Conference) error
	// DeleteConference removes the conference and detaches its papers.
	DeleteConference(ctx context.Context, id domain.ConferenceID) error
	CountPapersByConference(ctx context.Context) (map[domain.ConferenceID]int, error)
}

type PaperStore interface {
	FindPaperByID(ctx context.Context, id domain.PaperID) (*models.Paper, error)
	ListPapersByJournal(ctx context.Context, id domain.JournalID) ([]*models.Paper, error)
	ListPapersByConference(ctx context.Context, id domain.ConferenceID) ([]*models.Paper, error)
	SavePaper(ctx context.Context, p *models.Paper) error
}

// TxRunner runs fn as one unit of work. The Store handed to fn sees the
// writes made so far in the unit; they become visible to others only if
// fn returns nil, and are discarded otherwise.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, st Store) error) error
}
