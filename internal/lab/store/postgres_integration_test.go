//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/models"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/store"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/sentinel"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	contractSuite
	postgres *containers.PostgresContainer
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	s := new(PostgresStoreSuite)
	s.newStore = func() backend {
		err := s.postgres.TruncateAll(context.Background())
		s.Require().NoError(err)
		return store.NewPostgres(s.postgres.DB)
	}
	suite.Run(t, s)
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
}

func (s *PostgresStoreSuite) TestDuplicateAuthorshipIsConflict() {
	p := s.lab.Person("Jean", "Dupont")
	paper := s.lab.Paper("On merging")
	s.lab.Authorship(p, paper, 0)

	dup, err := models.NewAuthorship(domain.NewAuthorshipID(), p.ID, paper.ID, 1, time.Now())
	s.Require().NoError(err)
	s.ErrorIs(s.st.SaveAuthorship(s.ctx, dup), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestCheckConstraintRejectsReversedInterval() {
	p := s.lab.Person("Jean", "Dupont")
	o := s.lab.Organization("CIAD", "")
	m, err := models.NewMembership(domain.NewMembershipID(), p.ID, o.ID, models.StatusResearcher, nil, nil, time.Now())
	s.Require().NoError(err)
	since, to := *models.DayPtr(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)), *models.DayPtr(time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC))
	m.Since, m.To = &since, &to
	s.Error(s.st.SaveMembership(s.ctx, m))
}

// TestConcurrentTransactionsSerialize verifies that concurrent read-modify-write
// units of work on the same row never lose an update silently.
func (s *PostgresStoreSuite) TestConcurrentTransactionsSerialize() {
	p := s.lab.Person("Jean", "Dupont")
	const workers = 10

	var (
		wg        sync.WaitGroup
		committed atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.st.RunInTx(context.Background(), func(ctx context.Context, st store.Store) error {
				found, err := st.FindPersonByID(ctx, p.ID)
				if err != nil {
					return err
				}
				found.Indicators.WosCitations++
				return st.SavePerson(ctx, found)
			})
			if err == nil {
				committed.Add(1)
			}
		}()
	}
	wg.Wait()

	found, err := s.st.FindPersonByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(int(committed.Load()), found.Indicators.WosCitations)
	s.GreaterOrEqual(committed.Load(), int32(1))
}
