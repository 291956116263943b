package duplicate_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/duplicate"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/metrics"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/store"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	dErrors "github.com/gallandarakhneorg/labmanager-sub016/pkg/domain-errors"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/requestcontext"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	st      *store.InMemory
	lab     *testutil.Lab
	metrics *metrics.Metrics
	svc     *duplicate.Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.st = store.NewInMemory()
	s.lab = testutil.NewLab(s.T(), s.st)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.svc = duplicate.NewService(s.st,
		duplicate.WithMetrics(s.metrics),
		duplicate.WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }),
	)
}

func memberIDs(c duplicate.Cluster) []uuid.UUID {
	ids := make([]uuid.UUID, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.ID
	}
	return ids
}

func (s *ServiceSuite) TestPersonClusters() {
	ctx := context.Background()

	s.Run("spelling variants and initials form one cluster led by the most published", func() {
		s.SetupTest()
		dupont := s.lab.Person("Jean", "Dupont")
		dupond := s.lab.Person("Jean", "Dupond")
		initial := s.lab.Person("J.", "Dupont")
		s.lab.Person("Marie", "Curie")
		s.lab.Authorship(dupont, s.lab.Paper("a"), 1)
		s.lab.Authorship(dupont, s.lab.Paper("b"), 1)

		clusters, err := s.svc.Clusters(ctx, domain.KindPerson)
		s.Require().NoError(err)
		s.Require().Len(clusters, 1)
		c := clusters[0]
		s.Equal(domain.KindPerson, c.Kind)
		s.Require().Len(c.Members, 3)
		s.Equal(uuid.UUID(dupont.ID), c.Target().ID)
		s.Equal("Jean Dupont", c.Target().Label)
		s.Equal(2, c.Target().References)
		s.ElementsMatch([]uuid.UUID{uuid.UUID(dupond.ID), uuid.UUID(initial.ID)}, memberIDs(duplicate.Cluster{Members: c.Sources()}))
	})

	s.Run("chains of similar names are joined", func() {
		s.SetupTest()
		s.lab.Person("Jean", "Dupont")
		s.lab.Person("Jean", "Dupond")
		s.lab.Person("Jean", "Dupand")

		clusters, err := s.svc.Clusters(ctx, domain.KindPerson)
		s.Require().NoError(err)
		s.Require().Len(clusters, 1)
		s.Len(clusters[0].Members, 3)
	})

	s.Run("active memberships break authorship ties", func() {
		s.SetupTest()
		a := s.lab.Person("Ada", "Lovelace")
		b := s.lab.Person("Ada", "Lovelace")
		org := s.lab.Organization("CIAD", "")
		s.lab.Membership(b, org, "2020-01-01", "")
		s.lab.Membership(a, org, "2010-01-01", "2012-01-01")

		raw, err := s.svc.ClusterPersons(ctx)
		s.Require().NoError(err)
		s.Require().Len(raw, 1)
		s.Equal(b.ID, raw[0][0].Person.ID)
		s.Equal(1, raw[0][0].ActiveMemberships)
		s.Equal(0, raw[0][1].ActiveMemberships)
	})

	s.Run("the request time decides which memberships are active", func() {
		s.SetupTest()
		a := s.lab.Person("Ada", "Lovelace")
		b := s.lab.Person("Ada", "Lovelace")
		org := s.lab.Organization("CIAD", "")
		s.lab.Membership(b, org, "2020-01-01", "")
		s.lab.Membership(a, org, "2010-01-01", "2012-01-01")

		reqCtx := requestcontext.WithTime(ctx, time.Date(2011, 6, 1, 9, 0, 0, 0, time.UTC))
		raw, err := s.svc.ClusterPersons(reqCtx)
		s.Require().NoError(err)
		s.Require().Len(raw, 1)
		s.Equal(a.ID, raw[0][0].Person.ID)
		s.Equal(1, raw[0][0].ActiveMemberships)
		s.Equal(0, raw[0][1].ActiveMemberships)
	})

	s.Run("persons without names are never clustered", func() {
		s.SetupTest()
		s.lab.RawPerson("", "")
		s.lab.RawPerson("", "")
		s.lab.Person("Alan", "Turing")

		clusters, err := s.svc.Clusters(ctx, domain.KindPerson)
		s.Require().NoError(err)
		s.Empty(clusters)
	})
}

func (s *ServiceSuite) TestVenueAndOrganizationClusters() {
	ctx := context.Background()

	s.Run("organizations with the same acronym", func() {
		s.SetupTest()
		a := s.lab.Organization("UTBM", "Université de Technologie de Belfort-Montbéliard")
		b := s.lab.Organization("utbm", "")
		s.lab.SubOrganization(b, "CIAD", "")

		clusters, err := s.svc.Clusters(ctx, domain.KindOrganization)
		s.Require().NoError(err)
		s.Require().Len(clusters, 1)
		s.Equal(uuid.UUID(b.ID), clusters[0].Target().ID)
		s.Equal(uuid.UUID(a.ID), clusters[0].Sources()[0].ID)
	})

	s.Run("journals with similar names ranked by papers", func() {
		s.SetupTest()
		a := s.lab.Journal("Journal of Artificial Intelligence")
		b := s.lab.Journal("Journal of Artifical Intelligence")
		s.lab.JournalPaper("p", b)

		clusters, err := s.svc.Clusters(ctx, domain.KindJournal)
		s.Require().NoError(err)
		s.Require().Len(clusters, 1)
		s.Equal([]uuid.UUID{uuid.UUID(b.ID), uuid.UUID(a.ID)}, memberIDs(clusters[0]))
	})

	s.Run("conferences by acronym", func() {
		s.SetupTest()
		s.lab.Conference("AAMAS", "Autonomous Agents and Multiagent Systems")
		s.lab.Conference("aamas", "")
		s.lab.Conference("ECAI", "European Conference on Artificial Intelligence")

		clusters, err := s.svc.Clusters(ctx, domain.KindConference)
		s.Require().NoError(err)
		s.Require().Len(clusters, 1)
		s.Len(clusters[0].Members, 2)
	})
}

func (s *ServiceSuite) TestClustersCache() {
	ctx := context.Background()
	cache := duplicate.NewMemoryCache()
	svc := duplicate.NewService(s.st, duplicate.WithCache(cache, time.Minute), duplicate.WithMetrics(s.metrics))
	s.lab.Person("Jean", "Dupont")
	s.lab.Person("Jean", "Dupond")

	first, err := svc.Clusters(ctx, domain.KindPerson)
	s.Require().NoError(err)
	s.Require().Len(first, 1)

	s.lab.Person("Jean", "Dupant")
	cached, err := svc.Clusters(ctx, domain.KindPerson)
	s.Require().NoError(err)
	s.Len(cached[0].Members, 2, "served from cache")

	svc.Invalidate(ctx, domain.KindPerson)
	fresh, err := svc.Clusters(ctx, domain.KindPerson)
	s.Require().NoError(err)
	s.Len(fresh[0].Members, 3)

	s.Equal(1.0, promtest.ToFloat64(s.metrics.ClusterCacheLookups.WithLabelValues("person", "hit")))
	s.Equal(2.0, promtest.ToFloat64(s.metrics.ClusterCacheLookups.WithLabelValues("person", "miss")))
}

func (s *ServiceSuite) TestClusterAll() {
	s.lab.Person("Jean", "Dupont")
	s.lab.Person("Jean", "Dupont")
	s.lab.Journal("Nature")

	all, err := s.svc.ClusterAll(context.Background())
	s.Require().NoError(err)
	s.Len(all, len(domain.Kinds))
	s.Len(all[domain.KindPerson], 1)
	s.Empty(all[domain.KindJournal])
	s.NotNil(all[domain.KindConference])
}

func (s *ServiceSuite) TestErrors() {
	s.Run("unknown kind", func() {
		_, err := s.svc.Clusters(context.Background(), domain.Kind("paper"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.svc.Clusters(ctx, domain.KindPerson)
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}
