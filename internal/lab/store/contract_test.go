package store_test

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/store"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/sentinel"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/testutil"
)

// backend is a store under test together with its transaction runner.
type backend interface {
	store.Store
	store.TxRunner
}

// contractSuite holds the behaviour every Store implementation shares.
// Concrete suites embed it and set newStore.
type contractSuite struct {
	suite.Suite
	ctx      context.Context
	newStore func() backend
	st       backend
	lab      *testutil.Lab
}

func (s *contractSuite) SetupTest() {
	s.ctx = context.Background()
	s.st = s.newStore()
	s.lab = testutil.NewLab(s.T(), s.st)
}

func (s *contractSuite) TestPersonLookups() {
	s.Run("finds a saved person", func() {
		p := s.lab.Person("Jean", "Dupont")
		found, err := s.st.FindPersonByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("Dupont", found.LastName)
	})

	s.Run("unknown person is not found", func() {
		_, err := s.st.FindPersonByID(s.ctx, domain.NewPersonID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned entities are copies", func() {
		p := s.lab.Person("Marie", "Curie")
		found, err := s.st.FindPersonByID(s.ctx, p.ID)
		s.Require().NoError(err)
		found.LastName = "changed"
		again, err := s.st.FindPersonByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("Curie", again.LastName)
	})
}

func (s *contractSuite) TestDeletePersonCascades() {
	p := s.lab.Person("Jean", "Dupont")
	o := s.lab.Organization("CIAD", "")
	m := s.lab.Membership(p, o, "2020-01-01", "")
	paper := s.lab.Paper("On merging")
	s.lab.Authorship(p, paper, 0)

	s.Require().NoError(s.st.DeletePerson(s.ctx, p.ID))

	_, err := s.st.FindMembershipByID(s.ctx, m.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	authors, err := s.st.ListAuthorshipsByPaper(s.ctx, paper.ID)
	s.Require().NoError(err)
	s.Empty(authors)

	err = s.st.DeletePerson(s.ctx, p.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *contractSuite) TestMembershipQueries() {
	p := s.lab.Person("Jean", "Dupont")
	o1 := s.lab.Organization("CIAD", "")
	o2 := s.lab.Organization("UTBM", "")
	m1 := s.lab.Membership(p, o1, "2020-01-01", "2021-12-31")
	m2 := s.lab.Membership(p, o1, "2022-01-01", "")
	s.lab.Membership(p, o2, "2019-01-01", "")

	s.Run("pair listing is ordered by creation", func() {
		got, err := s.st.ListMembershipsForPair(s.ctx, p.ID, o1.ID)
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal(m1.ID, got[0].ID)
		s.Equal(m2.ID, got[1].ID)
	})

	s.Run("dates round-trip as days", func() {
		got, err := s.st.FindMembershipByID(s.ctx, m1.ID)
		s.Require().NoError(err)
		s.Equal(*testutil.Day("2020-01-01"), *got.Since)
		s.Equal(*testutil.Day("2021-12-31"), *got.To)
	})

	s.Run("active counts per person", func() {
		counts, err := s.st.CountActiveMembershipsByPerson(s.ctx, *testutil.Day("2023-01-01"))
		s.Require().NoError(err)
		s.Equal(2, counts[p.ID])
	})

	s.Run("membership needs an existing organization", func() {
		m, err := models.NewMembership(domain.NewMembershipID(), p.ID, domain.NewOrganizationID(), models.StatusEngineer, nil, nil, time.Now())
		s.Require().NoError(err)
		s.ErrorIs(s.st.SaveMembership(s.ctx, m), sentinel.ErrNotFound)
	})
}

func (s *contractSuite) TestOrganizationTree() {
	root := s.lab.Organization("UBFC", "")
	child := s.lab.SubOrganization(root, "UTBM", "")
	s.lab.SubOrganization(child, "CIAD", "")

	subs, err := s.st.ListSubOrganizations(s.ctx, root.ID)
	s.Require().NoError(err)
	s.Require().Len(subs, 1)
	s.Equal(child.ID, subs[0].ID)

	refs, err := s.st.CountOrganizationReferences(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, refs[root.ID])

	s.Require().NoError(s.st.DeleteOrganization(s.ctx, root.ID))
	orphan, err := s.st.FindOrganizationByID(s.ctx, child.ID)
	s.Require().NoError(err)
	s.Nil(orphan.SuperOrganizationID)
}

func (s *contractSuite) TestVenues() {
	j := s.lab.Journal("Journal of Robotics")
	j.Indicators = map[int]models.QualityIndicators{2022: {ScimagoQuartile: "Q1", ImpactFactor: 3.2}}
	s.Require().NoError(s.st.SaveJournal(s.ctx, j))
	s.lab.JournalPaper("Paper A", j)
	s.lab.JournalPaper("Paper B", j)

	found, err := s.st.FindJournalByID(s.ctx, j.ID)
	s.Require().NoError(err)
	s.Equal("Q1", found.Indicators[2022].ScimagoQuartile)

	counts, err := s.st.CountPapersByJournal(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, counts[j.ID])

	s.Require().NoError(s.st.DeleteJournal(s.ctx, j.ID))
	counts, err = s.st.CountPapersByJournal(s.ctx)
	s.Require().NoError(err)
	s.Zero(counts[j.ID])
}

func (s *contractSuite) TestResolveKind() {
	p := s.lab.Person("Jean", "Dupont")
	c := s.lab.Conference("IROS", "")

	kind, err := s.st.ResolveKind(s.ctx, uuid.UUID(p.ID))
	s.Require().NoError(err)
	s.Equal(domain.KindPerson, kind)

	kind, err = s.st.ResolveKind(s.ctx, uuid.UUID(c.ID))
	s.Require().NoError(err)
	s.Equal(domain.KindConference, kind)

	_, err = s.st.ResolveKind(s.ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *contractSuite) TestRunInTx() {
	s.Run("commits on success", func() {
		var id domain.PersonID
		err := s.st.RunInTx(s.ctx, func(ctx context.Context, st store.Store) error {
			p, err := models.NewPerson(domain.NewPersonID(), "Ada", "Lovelace", time.Now())
			if err != nil {
				return err
			}
			id = p.ID
			return st.SavePerson(ctx, p)
		})
		s.Require().NoError(err)
		_, err = s.st.FindPersonByID(s.ctx, id)
		s.NoError(err)
	})

	s.Run("rolls back every write on error", func() {
		p := s.lab.Person("Alan", "Turing")
		boom := errors.New("boom")
		err := s.st.RunInTx(s.ctx, func(ctx context.Context, st store.Store) error {
			found, err := st.FindPersonByID(ctx, p.ID)
			if err != nil {
				return err
			}
			found.Email = "alan@example.org"
			if err := st.SavePerson(ctx, found); err != nil {
				return err
			}
			if err := st.DeletePerson(ctx, p.ID); err != nil {
				return err
			}
			return boom
		})
		s.ErrorIs(err, boom)

		found, err := s.st.FindPersonByID(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Empty(found.Email)
	})

	s.Run("writes are visible inside the unit of work", func() {
		err := s.st.RunInTx(s.ctx, func(ctx context.Context, st store.Store) error {
			p, err := models.NewPerson(domain.NewPersonID(), "Grace", "Hopper", time.Now())
			if err != nil {
				return err
			}
			if err := st.SavePerson(ctx, p); err != nil {
				return err
			}
			_, err = st.FindPersonByID(ctx, p.ID)
			return err
		})
		s.NoError(err)
	})
}
