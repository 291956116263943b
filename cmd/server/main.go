package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/duplicate"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/handler"
	labmetrics "github.com/gallandarakhneorg/labmanager-sub016/internal/lab/metrics"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/lab/store"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/membership"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/merge"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/platform/config"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/platform/httpserver"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/platform/kafka"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/platform/logger"
	httpmetrics "github.com/gallandarakhneorg/labmanager-sub016/internal/platform/metrics"
	"github.com/gallandarakhneorg/labmanager-sub016/internal/platform/redis"
	httptransport "github.com/gallandarakhneorg/labmanager-sub016/internal/transport/http"
	audit "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit/publisher"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit/publishers/compliance"
	auditmemory "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit/store/memory"
	auditpostgres "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit/store/postgres"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit/worker"
)

const (
	shutdownTimeout  = 10 * time.Second
	auditBufferSize  = 1024
	topicPartitions  = 3
	topicReplication = 1
)

// outboxStore is an audit store the relay can drain.
type outboxStore interface {
	audit.Store
	worker.Outbox
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	labMetrics := labmetrics.New(reg)
	checks := map[string]httptransport.HealthCheck{}

	// Stores
	var (
		labStore   store.TxRunner
		auditStore outboxStore
	)
	if cfg.DatabaseURL != "" {
		db, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		labStore = store.NewPostgres(db, store.WithPostgresTxTimeout(cfg.TxTimeout))
		auditStore = auditpostgres.New(db)
		checks["postgres"] = db.PingContext
		log.InfoContext(ctx, "using postgres store")
	} else {
		labStore = store.NewInMemory(store.WithTxTimeout(cfg.TxTimeout))
		auditStore = auditmemory.NewInMemoryStore()
		log.WarnContext(ctx, "DATABASE_URL not set, using in-memory store")
	}

	// Duplicate cluster cache
	var cache duplicate.Cache = duplicate.NewMemoryCache()
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache = duplicate.NewRedisCache(redisClient.Client)
		checks["redis"] = redisClient.Health
		log.InfoContext(ctx, "using redis cluster cache")
	}

	// Audit
	opsPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	defer opsPublisher.Close()
	compliancePublisher := compliance.New(auditStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)
	defer compliancePublisher.Close()

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := startRelay(ctx, cfg.Kafka, auditStore, log)
		if err != nil {
			return err
		}
		defer producer.Close()
		checks["kafka"] = producer.Ping
	}

	// Services
	duplicates := duplicate.NewService(labStore,
		duplicate.WithLogger(log),
		duplicate.WithMetrics(labMetrics),
		duplicate.WithCache(cache, cfg.ClusterCacheTTL),
		duplicate.WithThreshold(cfg.SimilarityThreshold),
	)
	memberships := membership.New(labStore,
		membership.WithLogger(log),
		membership.WithMetrics(labMetrics),
		membership.WithAuditPublisher(opsPublisher),
	)
	merges := merge.New(labStore, memberships,
		merge.WithLogger(log),
		merge.WithMetrics(labMetrics),
		merge.WithAuditPublisher(compliancePublisher),
		merge.WithCacheInvalidator(duplicates),
	)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:             log,
		Gatherer:           reg,
		HTTPMetrics:        httpmetrics.NewHTTP(reg),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Checks:             checks,
	}, handler.New(memberships, duplicates, merges, log))

	srv := httpserver.New(cfg.Addr, router)
	serveErr := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "starting labmanager", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func openPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// startRelay connects to Kafka, makes sure the audit topic exists and
// starts draining the outbox until ctx is cancelled.
func startRelay(ctx context.Context, cfg config.KafkaConfig, outbox worker.Outbox, log *slog.Logger) (*kafka.Producer, error) {
	producer, err := kafka.NewProducer(cfg.Brokers,
		kafka.WithClientID(cfg.ClientID),
		kafka.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	if err := producer.Ping(ctx); err != nil {
		producer.Close()
		return nil, err
	}
	if err := producer.EnsureTopic(ctx, cfg.AuditTopic, topicPartitions, topicReplication); err != nil {
		producer.Close()
		return nil, err
	}

	relay := worker.NewRelay(outbox, producer, cfg.AuditTopic, worker.WithLogger(log))
	go func() {
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit relay stopped", "error", err)
		}
	}()
	log.InfoContext(ctx, "audit relay started", "topic", cfg.AuditTopic, "brokers", cfg.Brokers)
	return producer, nil
}
