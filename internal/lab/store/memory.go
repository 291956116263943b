package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/sentinel"
)

const defaultTxTimeout = 5 * time.Second

// InMemory is a Store kept in process memory. RunInTx works on a private
// copy of the whole state and swaps it in on success, so a failed unit of
// work leaves nothing behind. Writers are serialized.
type InMemory struct {
	mu      sync.RWMutex
	txMu    sync.Mutex
	state   *memState
	timeout time.Duration
}

// MemoryOption configures an InMemory store.
type MemoryOption func(*InMemory)

// WithTxTimeout bounds RunInTx when the caller's context has no deadline.
func WithTxTimeout(d time.Duration) MemoryOption {
	return func(s *InMemory) {
		s.timeout = d
	}
}

func NewInMemory(opts ...MemoryOption) *InMemory {
	s := &InMemory{state: newMemState(), timeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context, st Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.state.clone()
	s.mu.RUnlock()

	if err := fn(ctx, work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted before commit")
	}

	s.mu.Lock()
	s.state = work
	s.mu.Unlock()
	return nil
}

// read runs fn against the committed state.
func read[T any](s *InMemory, fn func(st *memState) (T, error)) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// write applies a single mutation as its own unit of work.
func (s *InMemory) write(ctx context.Context, fn func(st *memState) error) error {
	return s.RunInTx(ctx, func(_ context.Context, st Store) error {
		return fn(st.(*memState))
	})
}

func (s *InMemory) FindPersonByID(ctx context.Context, id domain.PersonID) (*models.Person, error) {
	return read(s, func(st *memState) (*models.Person, error) { return st.FindPersonByID(ctx, id) })
}

func (s *InMemory) ListPersons(ctx context.Context) ([]*models.Person, error) {
	return read(s, func(st *memState) ([]*models.Person, error) { return st.ListPersons(ctx) })
}

func (s *InMemory) SavePerson(ctx context.Context, p *models.Person) error {
	return s.write(ctx, func(st *memState) error { return st.SavePerson(ctx, p) })
}

func (s *InMemory) DeletePerson(ctx context.Context, id domain.PersonID) error {
	return s.write(ctx, func(st *memState) error { return st.DeletePerson(ctx, id) })
}

func (s *InMemory) CountAuthorshipsByPerson(ctx context.Context) (map[domain.PersonID]int, error) {
	return read(s, func(st *memState) (map[domain.PersonID]int, error) { return st.CountAuthorshipsByPerson(ctx) })
}

func (s *InMemory) CountActiveMembershipsByPerson(ctx context.Context, day time.Time) (map[domain.PersonID]int, error) {
	return read(s, func(st *memState) (map[domain.PersonID]int, error) { return st.CountActiveMembershipsByPerson(ctx, day) })
}

func (s *InMemory) FindOrganizationByID(ctx context.Context, id domain.OrganizationID) (*models.ResearchOrganization, error) {
	return read(s, func(st *memState) (*models.ResearchOrganization, error) { return st.FindOrganizationByID(ctx, id) })
}

func (s *InMemory) ListOrganizations(ctx context.Context) ([]*models.ResearchOrganization, error) {
	return read(s, func(st *memState) ([]*models.ResearchOrganization, error) { return st.ListOrganizations(ctx) })
}

func (s *InMemory) ListSubOrganizations(ctx context.Context, id domain.OrganizationID) ([]*models.ResearchOrganization, error) {
	return read(s, func(st *memState) ([]*models.ResearchOrganization, error) { return st.ListSubOrganizations(ctx, id) })
}

func (s *InMemory) SaveOrganization(ctx context.Context, o *models.ResearchOrganization) error {
	return s.write(ctx, func(st *memState) error { return st.SaveOrganization(ctx, o) })
}

func (s *InMemory) DeleteOrganization(ctx context.Context, id domain.OrganizationID) error {
	return s.write(ctx, func(st *memState) error { return st.DeleteOrganization(ctx, id) })
}

func (s *InMemory) CountOrganizationReferences(ctx context.Context) (map[domain.OrganizationID]int, error) {
	return read(s, func(st *memState) (map[domain.OrganizationID]int, error) { return st.CountOrganizationReferences(ctx) })
}

func (s *InMemory) FindMembershipByID(ctx context.Context, id domain.MembershipID) (*models.Membership, error) {
	return read(s, func(st *memState) (*models.Membership, error) { return st.FindMembershipByID(ctx, id) })
}

func (s *InMemory) ListMembershipsByPerson(ctx context.Context, id domain.PersonID) ([]*models.Membership, error) {
	return read(s, func(st *memState) ([]*models.Membership, error) { return st.ListMembershipsByPerson(ctx, id) })
}

func (s *InMemory) ListMembershipsByOrganization(ctx context.Context, id domain.OrganizationID) ([]*models.Membership, error) {
	return read(s, func(st *memState) ([]*models.Membership, error) { return st.ListMembershipsByOrganization(ctx, id) })
}

func (s *InMemory) ListMembershipsForPair(ctx context.Context, person domain.PersonID, org domain.OrganizationID) ([]*models.Membership, error) {
	return read(s, func(st *memState) ([]*models.Membership, error) { return st.ListMembershipsForPair(ctx, person, org) })
}

func (s *InMemory) SaveMembership(ctx context.Context, m *models.Membership) error {
	return s.write(ctx, func(st *memState) error { return st.SaveMembership(ctx, m) })
}

func (s *InMemory) DeleteMembership(ctx context.Context, id domain.MembershipID) error {
	return s.write(ctx, func(st *memState) error { return st.DeleteMembership(ctx, id) })
}

func (s *InMemory) ListAuthorshipsByPerson(ctx context.Context, id domain.PersonID) ([]*models.Authorship, error) {
	return read(s, func(st *memState) ([]*models.Authorship, error) { return st.ListAuthorshipsByPerson(ctx, id) })
}

func (s *InMemory) ListAuthorshipsByPaper(ctx context.Context, id domain.PaperID) ([]*models.Authorship, error) {
	return read(s, func(st *memState) ([]*models.Authorship, error) { return st.ListAuthorshipsByPaper(ctx, id) })
}

func (s *InMemory) SaveAuthorship(ctx context.Context, a *models.Authorship) error {
	return s.write(ctx, func(st *memState) error { return st.SaveAuthorship(ctx, a) })
}

func (s *InMemory) DeleteAuthorship(ctx context.Context, id domain.AuthorshipID) error {
	return s.write(ctx, func(st *memState) error { return st.DeleteAuthorship(ctx, id) })
}

func (s *InMemory) FindJournalByID(ctx context.Context, id domain.JournalID) (*models.Journal, error) {
	return read(s, func(st *memState) (*models.Journal, error) { return st.FindJournalByID(ctx, id) })
}

func (s *InMemory) ListJournals(ctx context.Context) ([]*models.Journal, error) {
	return read(s, func(st *memState) ([]*models.Journal, error) { return st.ListJournals(ctx) })
}

func (s *InMemory) SaveJournal(ctx context.Context, j *models.Journal) error {
	return s.write(ctx, func(st *memState) error { return st.SaveJournal(ctx, j) })
}

func (s *InMemory) DeleteJournal(ctx context.Context, id domain.JournalID) error {
	return s.write(ctx, func(st *memState) error { return st.DeleteJournal(ctx, id) })
}

func (s *InMemory) CountPapersByJournal(ctx context.Context) (map[domain.JournalID]int, error) {
	return read(s, func(st *memState) (map[domain.JournalID]int, error) { return st.CountPapersByJournal(ctx) })
}

func (s *InMemory) FindConferenceByID(ctx context.Context, id domain.ConferenceID) (*models.Conference, error) {
	return read(s, func(st *memState) (*models.Conference, error) { return st.FindConferenceByID(ctx, id) })
}

func (s *InMemory) ListConferences(ctx context.Context) ([]*models.Conference, error) {
	return read(s, func(st *memState) ([]*models.Conference, error) { return st.ListConferences(ctx) })
}

func (s *InMemory) SaveConference(ctx context.Context, c *models.Conference) error {
	return s.write(ctx, func(st *memState) error { return st.SaveConference(ctx, c) })
}

func (s *InMemory) DeleteConference(ctx context.Context, id domain.ConferenceID) error {
	return s.write(ctx, func(st *memState) error { return st.DeleteConference(ctx, id) })
}

func (s *InMemory) CountPapersByConference(ctx context.Context) (map[domain.ConferenceID]int, error) {
	return read(s, func(st *memState) (map[domain.ConferenceID]int, error) { return st.CountPapersByConference(ctx) })
}

func (s *InMemory) FindPaperByID(ctx context.Context, id domain.PaperID) (*models.Paper, error) {
	return read(s, func(st *memState) (*models.Paper, error) { return st.FindPaperByID(ctx, id) })
}

func (s *InMemory) ListPapersByJournal(ctx context.Context, id domain.JournalID) ([]*models.Paper, error) {
	return read(s, func(st *memState) ([]*models.Paper, error) { return st.ListPapersByJournal(ctx, id) })
}

func (s *InMemory) ListPapersByConference(ctx context.Context, id domain.ConferenceID) ([]*models.Paper, error) {
	return read(s, func(st *memState) ([]*models.Paper, error) { return st.ListPapersByConference(ctx, id) })
}

func (s *InMemory) SavePaper(ctx context.Context, p *models.Paper) error {
	return s.write(ctx, func(st *memState) error { return st.SavePaper(ctx, p) })
}

func (s *InMemory) ResolveKind(ctx context.Context, id uuid.UUID) (domain.Kind, error) {
	return read(s, func(st *memState) (domain.Kind, error) { return st.ResolveKind(ctx, id) })
}

// memState is the unlocked data set. Inside RunInTx it is a private copy
// and is handed to the callback as the Store.
type memState struct {
	persons       map[domain.PersonID]*models.Person
	organizations map[domain.OrganizationID]*models.ResearchOrganization
	memberships   map[domain.MembershipID]*models.Membership
	authorships   map[domain.AuthorshipID]*models.Authorship
	journals      map[domain.JournalID]*models.Journal
	conferences   map[domain.ConferenceID]*models.Conference
	papers        map[domain.PaperID]*models.Paper
}

func newMemState() *memState {
	return &memState{
		persons:       make(map[domain.PersonID]*models.Person),
		organizations: make(map[domain.OrganizationID]*models.ResearchOrganization),
		memberships:   make(map[domain.MembershipID]*models.Membership),
		authorships:   make(map[domain.AuthorshipID]*models.Authorship),
		journals:      make(map[domain.JournalID]*models.Journal),
		conferences:   make(map[domain.ConferenceID]*models.Conference),
		papers:        make(map[domain.PaperID]*models.Paper),
	}
}

func cloneMap[K comparable, V any](src map[K]V, clone func(V) V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = clone(v)
	}
	return dst
}

func (st *memState) clone() *memState {
	return &memState{
		persons:       cloneMap(st.persons, (*models.Person).Clone),
		organizations: cloneMap(st.organizations, (*models.ResearchOrganization).Clone),
		memberships:   cloneMap(st.memberships, (*models.Membership).Clone),
		authorships:   cloneMap(st.authorships, (*models.Authorship).Clone),
		journals:      cloneMap(st.journals, (*models.Journal).Clone),
		conferences:   cloneMap(st.conferences, (*models.Conference).Clone),
		papers:        cloneMap(st.papers, (*models.Paper).Clone),
	}
}

// collect copies and sorts the values matching keep, oldest first.
func collect[K comparable, V any](src map[K]V, keep func(V) bool, clone func(V) V, created func(V) time.Time, id func(V) uuid.UUID) []V {
	out := make([]V, 0)
	for _, v := range src {
		if keep == nil || keep(v) {
			out = append(out, clone(v))
		}
	}
	slices.SortFunc(out, func(a, b V) int {
		if c := created(a).Compare(created(b)); c != 0 {
			return c
		}
		return domain.CompareUUID(id(a), id(b))
	})
	return out
}

func notFound(what string, id fmt.Stringer) error {
	return fmt.Errorf("%s %s: %w", what, id, sentinel.ErrNotFound)
}

func (st *memState) FindPersonByID(_ context.Context, id domain.PersonID) (*models.Person, error) {
	p, ok := st.persons[id]
	if !ok {
		return nil, notFound("person", id)
	}
	return p.Clone(), nil
}

func (st *memState) ListPersons(_ context.Context) ([]*models.Person, error) {
	return collect(st.persons, nil, (*models.Person).Clone, personCreated, personUUID), nil
}

func (st *memState) SavePerson(_ context.Context, p *models.Person) error {
	st.persons[p.ID] = p.Clone()
	return nil
}

func (st *memState) DeletePerson(_ context.Context, id domain.PersonID) error {
	if _, ok := st.persons[id]; !ok {
		return notFound("person", id)
	}
	for mid, m := range st.memberships {
		if m.PersonID == id {
			delete(st.memberships, mid)
		}
	}
	for aid, a := range st.authorships {
		if a.PersonID == id {
			delete(st.authorships, aid)
		}
	}
	delete(st.persons, id)
	return nil
}

func (st *memState) CountAuthorshipsByPerson(_ context.Context) (map[domain.PersonID]int, error) {
	counts := make(map[domain.PersonID]int)
	for _, a := range st.authorships {
		counts[a.PersonID]++
	}
	return counts, nil
}

func (st *memState) CountActiveMembershipsByPerson(_ context.Context, day time.Time) (map[domain.PersonID]int, error) {
	counts := make(map[domain.PersonID]int)
	for _, m := range st.memberships {
		if m.ActiveAt(day) {
			counts[m.PersonID]++
		}
	}
	return counts, nil
}

func (st *memState) FindOrganizationByID(_ context.Context, id domain.OrganizationID) (*models.ResearchOrganization, error) {
	o, ok := st.organizations[id]
	if !ok {
		return nil, notFound("organization", id)
	}
	return o.Clone(), nil
}

func (st *memState) ListOrganizations(_ context.Context) ([]*models.ResearchOrganization, error) {
	return collect(st.organizations, nil, (*models.ResearchOrganization).Clone, orgCreated, orgUUID), nil
}

func (st *memState) ListSubOrganizations(_ context.Context, id domain.OrganizationID) ([]*models.ResearchOrganization, error) {
	keep := func(o *models.ResearchOrganization) bool {
		return o.SuperOrganizationID != nil && *o.SuperOrganizationID == id
	}
	return collect(st.organizations, keep, (*models.ResearchOrganization).Clone, orgCreated, orgUUID), nil
}

func (st *memState) SaveOrganization(_ context.Context, o *models.ResearchOrganization) error {
	if o.SuperOrganizationID != nil {
		if _, ok := st.organizations[*o.SuperOrganizationID]; !ok && *o.SuperOrganizationID != o.ID {
			return notFound("super organization", *o.SuperOrganizationID)
		}
	}
	st.organizations[o.ID] = o.Clone()
	return nil
}

func (st *memState) DeleteOrganization(_ context.Context, id domain.OrganizationID) error {
	if _, ok := st.organizations[id]; !ok {
		return notFound("organization", id)
	}
	for mid, m := range st.memberships {
		if m.OrganizationID == id {
			delete(st.memberships, mid)
		}
	}
	for _, o := range st.organizations {
		if o.SuperOrganizationID != nil && *o.SuperOrganizationID == id {
			o.SuperOrganizationID = nil
		}
	}
	delete(st.organizations, id)
	return nil
}

func (st *memState) CountOrganizationReferences(_ context.Context) (map[domain.OrganizationID]int, error) {
	counts := make(map[domain.OrganizationID]int)
	for _, m := range st.memberships {
		counts[m.OrganizationID]++
	}
	for _, o := range st.organizations {
		if o.SuperOrganizationID != nil {
			counts[*o.SuperOrganizationID]++
		}
	}
	return counts, nil
}

func (st *memState) FindMembershipByID(_ context.Context, id domain.MembershipID) (*models.Membership, error) {
	m, ok := st.memberships[id]
	if !ok {
		return nil, notFound("membership", id)
	}
	return m.Clone(), nil
}

func (st *memState) ListMembershipsByPerson(_ context.Context, id domain.PersonID) ([]*models.Membership, error) {
	keep := func(m *models.Membership) bool { return m.PersonID == id }
	return collect(st.memberships, keep, (*models.Membership).Clone, membershipCreated, membershipUUID), nil
}

func (st *memState) ListMembershipsByOrganization(_ context.Context, id domain.OrganizationID) ([]*models.Membership, error) {
	keep := func(m *models.Membership) bool { return m.OrganizationID == id }
	return collect(st.memberships, keep, (*models.Membership).Clone, membershipCreated, membershipUUID), nil
}

func (st *memState) ListMembershipsForPair(_ context.Context, person domain.PersonID, org domain.OrganizationID) ([]*models.Membership, error) {
	keep := func(m *models.Membership) bool { return m.PersonID == person && m.OrganizationID == org }
	return collect(st.memberships, keep, (*models.Membership).Clone, membershipCreated, membershipUUID), nil
}

func (st *memState) SaveMembership(_ context.Context, m *models.Membership) error {
	if _, ok := st.persons[m.PersonID]; !ok {
		return notFound("person", m.PersonID)
	}
	if _, ok := st.organizations[m.OrganizationID]; !ok {
		return notFound("organization", m.OrganizationID)
	}
	st.memberships[m.ID] = m.Clone()
	return nil
}

func (st *memState) DeleteMembership(_ context.Context, id domain.MembershipID) error {
	if _, ok := st.memberships[id]; !ok {
		return notFound("membership", id)
	}
	delete(st.memberships, id)
	return nil
}

func (st *memState) ListAuthorshipsByPerson(_ context.Context, id domain.PersonID) ([]*models.Authorship, error) {
	keep := func(a *models.Authorship) bool { return a.PersonID == id }
	return collect(st.authorships, keep, (*models.Authorship).Clone, authorshipCreated, authorshipUUID), nil
}

func (st *memState) ListAuthorshipsByPaper(_ context.Context, id domain.PaperID) ([]*models.Authorship, error) {
	keep := func(a *models.Authorship) bool { return a.PaperID == id }
	out := collect(st.authorships, keep, (*models.Authorship).Clone, authorshipCreated, authorshipUUID)
	slices.SortStableFunc(out, func(a, b *models.Authorship) int { return cmp.Compare(a.Rank, b.Rank) })
	return out, nil
}

func (st *memState) SaveAuthorship(_ context.Context, a *models.Authorship) error {
	if _, ok := st.persons[a.PersonID]; !ok {
		return notFound("person", a.PersonID)
	}
	if _, ok := st.papers[a.PaperID]; !ok {
		return notFound("paper", a.PaperID)
	}
	for _, other := range st.authorships {
		if other.ID != a.ID && other.PersonID == a.PersonID && other.PaperID == a.PaperID {
			return fmt.Errorf("person %s already authors paper %s: %w", a.PersonID, a.PaperID, sentinel.ErrConflict)
		}
	}
	st.authorships[a.ID] = a.Clone()
	return nil
}

func (st *memState) DeleteAuthorship(_ context.Context, id domain.AuthorshipID) error {
	if _, ok := st.authorships[id]; !ok {
		return notFound("authorship", id)
	}
	delete(st.authorships, id)
	return nil
}

func (st *memState) FindJournalByID(_ context.Context, id domain.JournalID) (*models.Journal, error) {
	j, ok := st.journals[id]
	if !ok {
		return nil, notFound("journal", id)
	}
	return j.Clone(), nil
}

func (st *memState) ListJournals(_ context.Context) ([]*models.Journal, error) {
	return collect(st.journals, nil, (*models.Journal).Clone, journalCreated, journalUUID), nil
}

func (st *memState) SaveJournal(_ context.Context, j *models.Journal) error {
	st.journals[j.ID] = j.Clone()
	return nil
}

func (st *memState) DeleteJournal(_ context.Context, id domain.JournalID) error {
	if _, ok := st.journals[id]; !ok {
		return notFound("journal", id)
	}
	for _, p := range st.papers {
		if p.JournalID != nil && *p.JournalID == id {
			p.JournalID = nil
		}
	}
	delete(st.journals, id)
	return nil
}

func (st *memState) CountPapersByJournal(_ context.Context) (map[domain.JournalID]int, error) {
	counts := make(map[domain.JournalID]int)
	for _, p := range st.papers {
		if p.JournalID != nil {
			counts[*p.JournalID]++
		}
	}
	return counts, nil
}

func (st *memState) FindConferenceByID(_ context.Context, id domain.ConferenceID) (*models.Conference, error) {
	c, ok := st.conferences[id]
	if !ok {
		return nil, notFound("conference", id)
	}
	return c.Clone(), nil
}

func (st *memState) ListConferences(_ context.Context) ([]*models.Conference, error) {
	return collect(st.conferences, nil, (*models.Conference).Clone, conferenceCreated, conferenceUUID), nil
}

func (st *memState) SaveConference(_ context.Context, c *models.Conference) error {
	st.conferences[c.ID] = c.Clone()
	return nil
}

func (st *memState) DeleteConference(_ context.Context, id domain.ConferenceID) error {
	if _, ok := st.conferences[id]; !ok {
		return notFound("conference", id)
	}
	for _, p := range st.papers {
		if p.ConferenceID != nil && *p.ConferenceID == id {
			p.ConferenceID = nil
		}
	}
	delete(st.conferences, id)
	return nil
}

func (st *memState) CountPapersByConference(_ context.Context) (map[domain.ConferenceID]int, error) {
	counts := make(map[domain.ConferenceID]int)
	for _, p := range st.papers {
		if p.ConferenceID != nil {
			counts[*p.ConferenceID]++
		}
	}
	return counts, nil
}

func (st *memState) FindPaperByID(_ context.Context, id domain.PaperID) (*models.Paper, error) {
	p, ok := st.papers[id]
	if !ok {
		return nil, notFound("paper", id)
	}
	return p.Clone(), nil
}

func (st *memState) ListPapersByJournal(_ context.Context, id domain.JournalID) ([]*models.Paper, error) {
	keep := func(p *models.Paper) bool { return p.JournalID != nil && *p.JournalID == id }
	return collect(st.papers, keep, (*models.Paper).Clone, paperCreated, paperUUID), nil
}

func (st *memState) ListPapersByConference(_ context.Context, id domain.ConferenceID) ([]*models.Paper, error) {
	keep := func(p *models.Paper) bool { return p.ConferenceID != nil && *p.ConferenceID == id }
	return collect(st.papers, keep, (*models.Paper).Clone, paperCreated, paperUUID), nil
}

func (st *memState) SavePaper(_ context.Context, p *models.Paper) error {
	if p.JournalID != nil {
		if _, ok := st.journals[*p.JournalID]; !ok {
			return notFound("journal", *p.JournalID)
		}
	}
	if p.ConferenceID != nil {
		if _, ok := st.conferences[*p.ConferenceID]; !ok {
			return notFound("conference", *p.ConferenceID)
		}
	}
	st.papers[p.ID] = p.Clone()
	return nil
}

func (st *memState) ResolveKind(_ context.Context, id uuid.UUID) (domain.Kind, error) {
	switch {
	case st.persons[domain.PersonID(id)] != nil:
		return domain.KindPerson, nil
	case st.organizations[domain.OrganizationID(id)] != nil:
		return domain.KindOrganization, nil
	case st.journals[domain.JournalID(id)] != nil:
		return domain.KindJournal, nil
	case st.conferences[domain.ConferenceID(id)] != nil:
		return domain.KindConference, nil
	}
	return "", fmt.Errorf("entity %s: %w", id, sentinel.ErrNotFound)
}

func personCreated(p *models.Person) time.Time            { return p.CreatedAt }
func personUUID(p *models.Person) uuid.UUID               { return uuid.UUID(p.ID) }
func orgCreated(o *models.ResearchOrganization) time.Time { return o.CreatedAt }
func orgUUID(o *models.ResearchOrganization) uuid.UUID    { return uuid.UUID(o.ID) }
func membershipCreated(m *models.Membership) time.Time    { return m.CreatedAt }
func membershipUUID(m *models.Membership) uuid.UUID       { return uuid.UUID(m.ID) }
func authorshipCreated(a *models.Authorship) time.Time    { return a.CreatedAt }
func authorshipUUID(a *models.Authorship) uuid.UUID       { return uuid.UUID(a.ID) }
func journalCreated(j *models.Journal) time.Time          { return j.CreatedAt }
func journalUUID(j *models.Journal) uuid.UUID             { return uuid.UUID(j.ID) }
func conferenceCreated(c *models.Conference) time.Time    { return c.CreatedAt }
func conferenceUUID(c *models.Conference) uuid.UUID       { return uuid.UUID(c.ID) }
func paperCreated(p *models.Paper) time.Time              { return p.CreatedAt }
func paperUUID(p *models.Paper) uuid.UUID                 { return uuid.UUID(p.ID) }
