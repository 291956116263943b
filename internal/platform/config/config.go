package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	labstrings "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	DatabaseURL string
	TxTimeout   time.Duration
	LogLevel    string

	// SimilarityThreshold is the minimum name similarity ratio for two
	// persons to be duplicate candidates.
	SimilarityThreshold float64
	ClusterCacheTTL     time.Duration
	RateLimitPerMinute  int

	Redis RedisConfig
	Kafka KafkaConfig
}

// RedisConfig configures the duplicate cluster cache. An empty URL keeps
// the cache in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit relay. Without brokers audit events
// stay in the audit store.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	ClientID   string
}

const (
	DefaultAddr                = ":8080"
	DefaultTxTimeout           = 5 * time.Second
	DefaultSimilarityThreshold = 0.8
	DefaultCacheTTL            = 10 * time.Minute
	DefaultRateLimitPerMinute  = 300
	DefaultAuditTopic          = "labmanager.audit"
)

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	var errs []string
	cfg := Server{
		Addr:                getEnv("LAB_ADDR", DefaultAddr),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		TxTimeout:           getDuration("TX_TIMEOUT", DefaultTxTimeout, &errs),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		SimilarityThreshold: getFloat("SIMILARITY_THRESHOLD", DefaultSimilarityThreshold, &errs),
		ClusterCacheTTL:     getDuration("CLUSTER_CACHE_TTL", DefaultCacheTTL, &errs),
		RateLimitPerMinute:  getInt("RATE_LIMIT_PER_MINUTE", DefaultRateLimitPerMinute, &errs),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10, &errs),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2, &errs),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second, &errs),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second, &errs),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second, &errs),
		},
		Kafka: KafkaConfig{
			Brokers:    labstrings.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			AuditTopic: getEnv("AUDIT_TOPIC", DefaultAuditTopic),
			ClientID:   getEnv("KAFKA_CLIENT_ID", "labmanager"),
		},
	}

	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		errs = append(errs, "SIMILARITY_THRESHOLD must be in (0, 1]")
	}
	if cfg.RateLimitPerMinute < 0 {
		errs = append(errs, "RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if len(errs) > 0 {
		return Server{}, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64, errs *[]string) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration, errs *[]string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
		return fallback
	}
	return d
}
