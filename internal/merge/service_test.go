package merge_test

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AuditPublisher,CacheInvalidator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/metrics"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/store"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/membership"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/merge"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/merge/mocks"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
	audit "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit/publishers/compliance"
	auditmemory "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit/store/memory"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/sentinel"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/testutil"
)

var now = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctx         context.Context
	st          *store.InMemory
	lab         *testutil.Lab
	audit       *auditmemory.InMemoryStore
	metrics     *metrics.Metrics
	memberships *membership.Service
	invalidator *mocks.MockCacheInvalidator
	svc         *merge.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.st = store.NewInMemory()
	s.lab = testutil.NewLab(s.T(), s.st)
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.memberships = membership.New(s.st, membership.WithClock(func() time.Time { return now }))
	s.invalidator = mocks.NewMockCacheInvalidator(gomock.NewController(s.T()))
	s.svc = merge.New(s.st, s.memberships,
		merge.WithMetrics(s.metrics),
		merge.WithAuditPublisher(compliance.New(s.audit)),
		merge.WithCacheInvalidator(s.invalidator),
		merge.WithClock(func() time.Time { return now }),
	)
}

func (s *ServiceSuite) requireGone(id domain.PersonID) {
	_, err := s.st.FindPersonByID(s.ctx, id)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ServiceSuite) mergeCount(kind domain.Kind, outcome string) float64 {
	return promtest.ToFloat64(s.metrics.Merges.WithLabelValues(kind.String(), outcome))
}

func (s *ServiceSuite) TestMergePersonsRepointsEverything() {
	org := s.lab.Organization("CIAD", "Connaissance et Intelligence Artificielle Distribuées")
	a := s.lab.Person("Jean", "Dupont")
	b := s.lab.Person("Jean", "Dupond")
	b.Email = "jean.dupont@utbm.fr"
	s.Require().NoError(s.st.SavePerson(s.ctx, b))
	target := s.lab.Person("J.", "Dupont")

	for _, title := range []string{"one", "two", "three"} {
		s.lab.Authorship(a, s.lab.Paper(title), 1)
	}
	m := s.lab.Membership(a, org, "2020-01-01", "")

	s.invalidator.EXPECT().Invalidate(gomock.Any(), domain.KindPerson).Times(1)
	s.Require().NoError(s.svc.MergePersons(s.ctx, []domain.PersonID{a.ID, b.ID}, target.ID))

	authorships, err := s.st.ListAuthorshipsByPerson(s.ctx, target.ID)
	s.Require().NoError(err)
	s.Len(authorships, 3)

	moved, err := s.st.FindMembershipByID(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(target.ID, moved.PersonID)
	s.Nil(moved.To)

	s.requireGone(a.ID)
	s.requireGone(b.ID)

	stored, err := s.st.FindPersonByID(s.ctx, target.ID)
	s.Require().NoError(err)
	s.Equal("jean.dupont@utbm.fr", stored.Email)
	s.Equal("J.", stored.FirstName)

	events, err := s.audit.ListBySubject(s.ctx, target.ID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventPersonsMerged), events[0].Action)
	s.Equal(audit.CategoryCompliance, events[0].Category)
	s.ElementsMatch([]string{a.ID.String(), b.ID.String()}, events[0].RelatedIDs)

	s.Equal(1.0, s.mergeCount(domain.KindPerson, "success"))
	s.Equal(2.0, promtest.ToFloat64(s.metrics.MergedSources.WithLabelValues("person")))
}

func (s *ServiceSuite) TestMergePersonsOverlappingMembershipRollsBack() {
	org := s.lab.Organization("CIAD", "Connaissance et Intelligence Artificielle Distribuées")
	a := s.lab.Person("Jean", "Dupont")
	b := s.lab.Person("Jean", "Dupond")
	target := s.lab.Person("J.", "Dupont")
	for _, title := range []string{"one", "two", "three"} {
		s.lab.Authorship(a, s.lab.Paper(title), 1)
	}
	ma := s.lab.Membership(a, org, "2020-01-01", "")
	mt := s.lab.Membership(target, org, "2022-01-01", "")

	err := s.svc.MergePersons(s.ctx, []domain.PersonID{a.ID, b.ID}, target.ID)
	var conflict *membership.ConflictError
	s.Require().ErrorAs(err, &conflict)
	s.Equal(mt.ID, conflict.MembershipID)
	s.Equal(dErrors.CodeActiveMembershipConflict, dErrors.CodeOf(err))

	_, err = s.st.FindPersonByID(s.ctx, a.ID)
	s.NoError(err)
	_, err = s.st.FindPersonByID(s.ctx, b.ID)
	s.NoError(err)
	authorships, err := s.st.ListAuthorshipsByPerson(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Len(authorships, 3)
	stored, err := s.st.FindMembershipByID(s.ctx, ma.ID)
	s.Require().NoError(err)
	s.Equal(a.ID, stored.PersonID)
	targetMemberships, err := s.st.ListMembershipsByPerson(s.ctx, target.ID)
	s.Require().NoError(err)
	s.Len(targetMemberships, 1)

	all, err := s.audit.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
	s.Equal(1.0, s.mergeCount(domain.KindPerson, "active_membership_conflict"))
}

func (s *ServiceSuite) TestMergePersonsDropsSharedAuthorship() {
	a := s.lab.Person("Jean", "Dupont")
	target := s.lab.Person("Jean", "Dupond")
	shared := s.lab.Paper("shared")
	s.lab.Authorship(a, shared, 2)
	s.lab.Authorship(target, shared, 1)
	s.lab.Authorship(a, s.lab.Paper("solo"), 1)

	s.invalidator.EXPECT().Invalidate(gomock.Any(), domain.KindPerson)
	s.Require().NoError(s.svc.MergePersons(s.ctx, []domain.PersonID{a.ID}, target.ID))

	authors, err := s.st.ListAuthorshipsByPaper(s.ctx, shared.ID)
	s.Require().NoError(err)
	s.Require().Len(authors, 1)
	s.Equal(target.ID, authors[0].PersonID)

	mine, err := s.st.ListAuthorshipsByPerson(s.ctx, target.ID)
	s.Require().NoError(err)
	s.Len(mine, 2)
}

func (s *ServiceSuite) TestIdentityChecks() {
	p := s.lab.Person("Jean", "Dupont")
	q := s.lab.Person("Jean", "Dupond")
	j := s.lab.Journal("Journal of Things")

	cases := []struct {
		name    string
		kind    domain.Kind
		sources []uuid.UUID
		target  uuid.UUID
		code    dErrors.Code
	}{
		{"no sources", domain.KindPerson, nil, uuid.UUID(p.ID), dErrors.CodeIdentityConflict},
		{"target among sources", domain.KindPerson, []uuid.UUID{uuid.UUID(q.ID), uuid.UUID(p.ID)}, uuid.UUID(p.ID), dErrors.CodeIdentityConflict},
		{"source of another kind", domain.KindPerson, []uuid.UUID{uuid.UUID(j.ID)}, uuid.UUID(p.ID), dErrors.CodeIdentityConflict},
		{"target of another kind", domain.KindJournal, []uuid.UUID{uuid.UUID(j.ID)}, uuid.UUID(p.ID), dErrors.CodeIdentityConflict},
		{"unknown source", domain.KindPerson, []uuid.UUID{uuid.New()}, uuid.UUID(p.ID), dErrors.CodeNotFound},
		{"unknown target", domain.KindPerson, []uuid.UUID{uuid.UUID(q.ID)}, uuid.New(), dErrors.CodeNotFound},
		{"invalid kind", domain.Kind("paper"), []uuid.UUID{uuid.UUID(q.ID)}, uuid.UUID(p.ID), dErrors.CodeInvalidInput},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			err := s.svc.Merge(s.ctx, tc.kind, tc.sources, tc.target)
			s.Require().Error(err)
			s.Equal(tc.code, dErrors.CodeOf(err))
			if tc.code == dErrors.CodeIdentityConflict {
				var idErr *merge.IdentityError
				s.ErrorAs(err, &idErr)
			}
		})
	}

	_, err := s.st.FindPersonByID(s.ctx, q.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestRepeatedSourceIsMergedOnce() {
	p := s.lab.Person("Jean", "Dupont")
	target := s.lab.Person("Jean", "Dupond")

	s.invalidator.EXPECT().Invalidate(gomock.Any(), domain.KindPerson)
	s.Require().NoError(s.svc.MergePersons(s.ctx, []domain.PersonID{p.ID, p.ID}, target.ID))
	s.requireGone(p.ID)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.MergedSources.WithLabelValues("person")))
}

func (s *ServiceSuite) TestMergeOrganizations() {
	root := s.lab.Organization("UTBM", "Université de Technologie de Belfort-Montbéliard")
	src := s.lab.SubOrganization(root, "CIAD", "")
	target := s.lab.Organization("", "Connaissance et Intelligence Artificielle Distribuées")
	team := s.lab.SubOrganization(src, "MAS", "Multi-Agent Systems")
	person := s.lab.Person("Jean", "Dupont")
	m := s.lab.Membership(person, src, "2020-01-01", "")

	s.invalidator.EXPECT().Invalidate(gomock.Any(), domain.KindOrganization)
	s.Require().NoError(s.svc.MergeOrganizations(s.ctx, []domain.OrganizationID{src.ID}, target.ID))

	stored, err := s.st.FindOrganizationByID(s.ctx, target.ID)
	s.Require().NoError(err)
	s.Equal("CIAD", stored.Acronym)
	s.Require().NotNil(stored.SuperOrganizationID)
	s.Equal(root.ID, *stored.SuperOrganizationID)

	child, err := s.st.FindOrganizationByID(s.ctx, team.ID)
	s.Require().NoError(err)
	s.Equal(target.ID, *child.SuperOrganizationID)

	moved, err := s.st.FindMembershipByID(s.ctx, m.ID)
	s.Require().NoError(err)
	s.Equal(target.ID, moved.OrganizationID)

	_, err = s.st.FindOrganizationByID(s.ctx, src.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ServiceSuite) TestMergeOrganizationsRejectsCycles() {
	s.Run("target below a source", func() {
		s.SetupTest()
		src := s.lab.Organization("UTBM", "")
		target := s.lab.SubOrganization(src, "CIAD", "")

		err := s.svc.MergeOrganizations(s.ctx, []domain.OrganizationID{src.ID}, target.ID)
		var idErr *merge.IdentityError
		s.Require().ErrorAs(err, &idErr)
	})

	s.Run("a child of the source is an ancestor of the target", func() {
		s.SetupTest()
		src := s.lab.Organization("UTBM", "")
		mid := s.lab.SubOrganization(src, "SET", "")
		target := s.lab.SubOrganization(mid, "CIAD", "")

		err := s.svc.MergeOrganizations(s.ctx, []domain.OrganizationID{src.ID}, target.ID)
		s.Equal(dErrors.CodeIdentityConflict, dErrors.CodeOf(err))

		stored, err := s.st.FindOrganizationByID(s.ctx, mid.ID)
		s.Require().NoError(err)
		s.Equal(src.ID, *stored.SuperOrganizationID)
	})
}

func (s *ServiceSuite) TestMergeJournals() {
	src := s.lab.Journal("J. of Things")
	target := s.lab.Journal("Journal of Things")
	src.ISSN = "1234-5678"
	src.Indicators = map[int]models.QualityIndicators{
		2020: {ScimagoQuartile: "Q2"},
		2021: {ScimagoQuartile: "Q1"},
	}
	s.Require().NoError(s.st.SaveJournal(s.ctx, src))
	target.Indicators = map[int]models.QualityIndicators{2020: {ScimagoQuartile: "Q3"}}
	s.Require().NoError(s.st.SaveJournal(s.ctx, target))
	paper := s.lab.JournalPaper("a paper", src)

	s.invalidator.EXPECT().Invalidate(gomock.Any(), domain.KindJournal)
	s.Require().NoError(s.svc.MergeJournals(s.ctx, []domain.JournalID{src.ID}, target.ID))

	stored, err := s.st.FindJournalByID(s.ctx, target.ID)
	s.Require().NoError(err)
	s.Equal("1234-5678", stored.ISSN)
	s.Equal("Q3", stored.Indicators[2020].ScimagoQuartile)
	s.Equal("Q1", stored.Indicators[2021].ScimagoQuartile)

	moved, err := s.st.FindPaperByID(s.ctx, paper.ID)
	s.Require().NoError(err)
	s.Equal(target.ID, *moved.JournalID)

	papers, err := s.st.ListPapersByJournal(s.ctx, target.ID)
	s.Require().NoError(err)
	s.Len(papers, 1)
}

func (s *ServiceSuite) TestMergeConferences() {
	src := s.lab.Conference("IJCAI", "")
	target := s.lab.Conference("", "International Joint Conference on Artificial Intelligence")
	paper := s.lab.ConferencePaper("a paper", src)

	s.invalidator.EXPECT().Invalidate(gomock.Any(), domain.KindConference)
	s.Require().NoError(s.svc.MergeConferences(s.ctx, []domain.ConferenceID{src.ID}, target.ID))

	stored, err := s.st.FindConferenceByID(s.ctx, target.ID)
	s.Require().NoError(err)
	s.Equal("IJCAI", stored.Acronym)

	moved, err := s.st.FindPaperByID(s.ctx, paper.ID)
	s.Require().NoError(err)
	s.Equal(target.ID, *moved.ConferenceID)

	events, err := s.audit.ListBySubject(s.ctx, target.ID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventConferencesMerged), events[0].Action)
}

func (s *ServiceSuite) TestFailedAuditRollsBack() {
	publisher := mocks.NewMockAuditPublisher(gomock.NewController(s.T()))
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	svc := merge.New(s.st, s.memberships,
		merge.WithAuditPublisher(publisher),
		merge.WithCacheInvalidator(s.invalidator),
	)

	src := s.lab.Journal("J. of Things")
	target := s.lab.Journal("Journal of Things")
	paper := s.lab.JournalPaper("a paper", src)

	err := svc.MergeJournals(s.ctx, []domain.JournalID{src.ID}, target.ID)
	s.Equal(dErrors.CodeInternal, dErrors.CodeOf(err))

	_, err = s.st.FindJournalByID(s.ctx, src.ID)
	s.NoError(err)
	stored, err := s.st.FindPaperByID(s.ctx, paper.ID)
	s.Require().NoError(err)
	s.Equal(src.ID, *stored.JournalID)
}

func (s *ServiceSuite) TestCancelledContext() {
	p := s.lab.Person("Jean", "Dupont")
	target := s.lab.Person("Jean", "Dupond")

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	err := s.svc.MergePersons(ctx, []domain.PersonID{p.ID}, target.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	s.Equal(1.0, s.mergeCount(domain.KindPerson, "timeout"))
}
