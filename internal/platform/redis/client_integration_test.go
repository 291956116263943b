//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/platform/config"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/platform/redis"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/testutil/containers"
)

func TestNew(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	t.Run("empty URL disables redis", func(t *testing.T) {
		client, err := redis.New(ctx, config.RedisConfig{})
		require.NoError(t, err)
		require.Nil(t, client)
	})

	t.Run("connects and reports health", func(t *testing.T) {
		rc := containers.GetManager().GetRedis(t)
		client, err := redis.New(ctx, config.RedisConfig{
			URL:         rc.Addr,
			PoolSize:    4,
			DialTimeout: 2 * time.Second,
		})
		require.NoError(t, err)
		require.NotNil(t, client)
		defer client.Close()

		require.NoError(t, client.Health(ctx))
	})

	t.Run("bad URL", func(t *testing.T) {
		_, err := redis.New(ctx, config.RedisConfig{URL: "not a url"})
		require.Error(t, err)
	})
}
