// Package worker relays audit events from the outbox to Kafka.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit"
)

// Outbox is the source of unpublished events. FetchUnpublished and
// MarkPublished run inside RunInTx so a batch is claimed and stamped
// atomically.
type Outbox interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Sink publishes one record.
type Sink interface {
	Publish(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

// Relay polls the outbox and publishes each event to a Kafka topic.
// Delivery is at-least-once: a crash between Publish and MarkPublished
// republishes the batch.
type Relay struct {
	outbox   Outbox
	sink     Sink
	topic    string
	batch    int
	interval time.Duration
	breaker  *CircuitBreaker
	logger   *slog.Logger
	clock    func() time.Time
}

type Option func(*Relay)

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithCircuitBreaker pauses the relay after repeated sink failures.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(r *Relay) {
		r.breaker = cb
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithClock(clock func() time.Time) Option {
	return func(r *Relay) {
		r.clock = clock
	}
}

func NewRelay(outbox Outbox, sink Sink, topic string, opts ...Option) *Relay {
	r := &Relay{
		outbox:   outbox,
		sink:     sink,
		topic:    topic,
		batch:    100,
		interval: time.Second,
		breaker:  NewCircuitBreaker(5, 30*time.Second),
		logger:   slog.Default(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := r.RelayOnce(ctx)
			if err != nil {
				r.logger.WarnContext(ctx, "audit relay failed", "error", err)
				continue
			}
			if n > 0 {
				r.logger.DebugContext(ctx, "audit events relayed", "count", n)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many events were relayed.
// Events published before a sink failure are still marked.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	if !r.breaker.Allow() {
		return 0, nil
	}
	var relayed int
	var publishErr error
	err := r.outbox.RunInTx(ctx, func(ctx context.Context) error {
		entries, err := r.outbox.FetchUnpublished(ctx, r.batch)
		if err != nil {
			return err
		}
		done := make([]uuid.UUID, 0, len(entries))
		for _, e := range entries {
			headers := map[string]string{"event_type": e.EventType}
			if publishErr = r.sink.Publish(ctx, r.topic, []byte(e.Key), e.Payload, headers); publishErr != nil {
				r.breaker.RecordFailure()
				break
			}
			done = append(done, e.ID)
		}
		if publishErr == nil && len(entries) > 0 {
			r.breaker.RecordSuccess()
		}
		if err := r.outbox.MarkPublished(ctx, done, r.clock()); err != nil {
			return err
		}
		relayed = len(done)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return relayed, publishErr
}
