// Package compliance provides a fail-closed audit publisher for irreversible
// record changes.
//
// Events are written synchronously and the caller blocks until the write
// succeeds. If the write fails, an error is returned and the calling
// operation MUST fail. With the Postgres outbox store, emitting inside the
// business transaction makes the event commit or roll back with it.
//
// Use for: persons_merged, organizations_merged, journals_merged, conferences_merged
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	audit "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit"
)

// Publisher emits compliance events with fail-closed semantics.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	clock   func() time.Time
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// New creates a compliance publisher.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes a compliance event to the audit store.
// Returns error if persistence fails - the caller MUST fail its operation.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	start := time.Now()

	if event.SubjectID == "" {
		return fmt.Errorf("compliance event requires SubjectID")
	}
	if event.Action == "" {
		return fmt.Errorf("compliance event requires Action")
	}
	event = audit.Normalize(event, p.clock())
	if event.Category != audit.CategoryCompliance {
		return fmt.Errorf("action %q is not a compliance event", event.Action)
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.metrics != nil {
			p.metrics.IncPersistFailures()
		}
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
				"action", event.Action,
				"subject_id", event.SubjectID,
				"error", err,
			)
		}
		return fmt.Errorf("compliance audit persistence failed: %w", err)
	}

	if p.metrics != nil {
		p.metrics.ObservePersistDuration(time.Since(start).Seconds())
		p.metrics.IncEventsEmitted()
	}
	return nil
}

// Close is a no-op for the synchronous compliance publisher.
func (p *Publisher) Close() error {
	return nil
}
