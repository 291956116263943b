package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	audit "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit"
)

// InMemoryStore keeps events in append order. It also acts as an outbox
// so the Kafka relay can run without a database.
type InMemoryStore struct {
	mu        sync.RWMutex
	events    []audit.Event
	published map[uuid.UUID]time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{published: make(map[uuid.UUID]time.Time)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.published = make(map[uuid.UUID]time.Time)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event = audit.Normalize(event, time.Now())
	event.RelatedIDs = slices.Clone(event.RelatedIDs)
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.SubjectID == subjectID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListAll returns every event in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events), nil
}

func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		return []audit.Event{}, nil
	}
	out := slices.Clone(s.events)
	// stable so events with equal timestamps keep reverse append order
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b audit.Event) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FetchUnpublished returns up to limit events not yet relayed, oldest first.
func (s *InMemoryStore) FetchUnpublished(_ context.Context, limit int) ([]audit.OutboxEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.OutboxEntry
	for _, e := range s.events {
		if len(out) >= limit {
			break
		}
		if _, done := s.published[e.ID]; done {
			continue
		}
		raw, err := audit.Marshal(e)
		if err != nil {
			return nil, err
		}
		key := e.SubjectID
		if key == "" {
			key = e.ID.String()
		}
		out = append(out, audit.OutboxEntry{ID: e.ID, Key: key, EventType: e.Action, Payload: raw})
	}
	return out, nil
}

func (s *InMemoryStore) MarkPublished(_ context.Context, ids []uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.published[id] = at
	}
	return nil
}

// RunInTx runs fn directly; the store has no transactions.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
