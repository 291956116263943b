package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"LAB_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "SIMILARITY_THRESHOLD", "CLUSTER_CACHE_TTL", "TX_TIMEOUT", "RATE_LIMIT_PER_MINUTE"} {
			t.Setenv(key, "")
		}
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, DefaultAddr, cfg.Addr)
		assert.Equal(t, DefaultSimilarityThreshold, cfg.SimilarityThreshold)
		assert.Equal(t, 10*time.Minute, cfg.ClusterCacheTTL)
		assert.Equal(t, DefaultTxTimeout, cfg.TxTimeout)
		assert.Equal(t, DefaultRateLimitPerMinute, cfg.RateLimitPerMinute)
		assert.Empty(t, cfg.Kafka.Brokers)
		assert.Equal(t, DefaultAuditTopic, cfg.Kafka.AuditTopic)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("LAB_ADDR", ":9090")
		t.Setenv("SIMILARITY_THRESHOLD", "0.9")
		t.Setenv("CLUSTER_CACHE_TTL", "30s")
		t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,, kafka-1:9092")
		t.Setenv("REDIS_URL", "redis://localhost:6379/0")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, 0.9, cfg.SimilarityThreshold)
		assert.Equal(t, 30*time.Second, cfg.ClusterCacheTTL)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	})

	t.Run("invalid values are reported together", func(t *testing.T) {
		t.Setenv("SIMILARITY_THRESHOLD", "1.5")
		t.Setenv("TX_TIMEOUT", "soon")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SIMILARITY_THRESHOLD")
		assert.Contains(t, err.Error(), "TX_TIMEOUT")
	})
}
