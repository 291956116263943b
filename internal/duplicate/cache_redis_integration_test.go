//go:build integration

package duplicate_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/duplicate"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *duplicate.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = duplicate.NewRedisCache(s.redis.Client)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRoundTripAndExpiry() {
	ctx := context.Background()
	want := []duplicate.Cluster{{
		Kind: domain.KindJournal,
		Members: []duplicate.Member{
			{ID: uuid.New(), Label: "Nature", References: 12},
			{ID: uuid.New(), Label: "Nature (London)", References: 1},
		},
	}}

	s.Require().NoError(s.cache.Set(ctx, domain.KindJournal, want, time.Second))
	keys, err := s.redis.Keys(ctx, "labmanager:duplicates:*")
	s.Require().NoError(err)
	s.Equal([]string{"labmanager:duplicates:journal"}, keys)

	got, ok, err := s.cache.Get(ctx, domain.KindJournal)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(want, got)

	s.Eventually(func() bool {
		_, ok, err := s.cache.Get(ctx, domain.KindJournal)
		return err == nil && !ok
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *RedisCacheSuite) TestInvalidate() {
	ctx := context.Background()
	s.Require().NoError(s.cache.Set(ctx, domain.KindPerson, []duplicate.Cluster{}, time.Minute))
	s.Require().NoError(s.cache.Set(ctx, domain.KindOrganization, []duplicate.Cluster{}, time.Minute))

	s.Require().NoError(s.cache.Invalidate(ctx, domain.KindPerson))

	_, ok, err := s.cache.Get(ctx, domain.KindPerson)
	s.Require().NoError(err)
	s.False(ok)
	_, ok, err = s.cache.Get(ctx, domain.KindOrganization)
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisCacheSuite) TestCorruptEntryIsAMiss() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.Set(ctx, "labmanager:duplicates:conference", "not json", time.Minute).Err())

	_, ok, err := s.cache.Get(ctx, domain.KindConference)
	s.Require().NoError(err)
	s.False(ok)
}
