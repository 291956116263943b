// Package publisher emits operational audit events. In sync mode Emit
// writes through to the store; with an async buffer events are queued and
// written by a background goroutine, and dropped when the buffer is full.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	audit "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit"
)

// ErrBufferFull is returned by Emit when the async buffer cannot take the event.
var ErrBufferFull = errors.New("audit buffer full")

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("audit publisher closed")

type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	buffer int

	mu     sync.RWMutex
	closed bool
	queue  chan audit.Event
	done   chan struct{}
}

type Option func(*Publisher)

// WithAsyncBuffer queues up to size events in memory.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = size
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer > 0 {
		p.queue = make(chan audit.Event, p.buffer)
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	event = audit.Normalize(event, time.Now())
	if p.queue == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit event dropped", "action", event.Action, "subject_id", event.SubjectID)
		}
		return ErrBufferFull
	}
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.queue {
		// detached from the emitting request, which may be gone by now
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("audit append failed", "action", event.Action, "error", err)
		}
	}
}

// List returns the events about one entity.
func (p *Publisher) List(ctx context.Context, subjectID string) ([]audit.Event, error) {
	return p.store.ListBySubject(ctx, subjectID)
}

// Close stops accepting events and waits for queued ones to be written.
func (p *Publisher) Close() error {
	if p.queue == nil {
		return nil
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	<-p.done
	return nil
}
