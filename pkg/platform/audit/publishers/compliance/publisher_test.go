package compliance

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit"
	"github.com/gallandarakhneorg/labmanager-sub016/pkg/platform/audit/store/memory"
)

type failingStore struct {
	*memory.InMemoryStore
}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("disk full")
}

func TestEmit(t *testing.T) {
	ctx := context.Background()

	t.Run("persists merge events", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		m := NewMetrics(prometheus.NewRegistry())
		pub := New(store, WithMetrics(m))
		target := uuid.NewString()

		err := pub.Emit(ctx, audit.Event{
			Action:     string(audit.EventPersonsMerged),
			Kind:       "person",
			SubjectID:  target,
			RelatedIDs: []string{uuid.NewString()},
		})
		require.NoError(t, err)

		events, err := store.ListBySubject(ctx, target)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.CategoryCompliance, events[0].Category)
		assert.False(t, events[0].Timestamp.IsZero())
		assert.Equal(t, 1.0, promtest.ToFloat64(m.EventsEmitted))
	})

	t.Run("rejects incomplete events", func(t *testing.T) {
		pub := New(memory.NewInMemoryStore())
		assert.Error(t, pub.Emit(ctx, audit.Event{Action: string(audit.EventPersonsMerged)}))
		assert.Error(t, pub.Emit(ctx, audit.Event{SubjectID: "x"}))
	})

	t.Run("rejects operational events", func(t *testing.T) {
		pub := New(memory.NewInMemoryStore())
		err := pub.Emit(ctx, audit.Event{Action: string(audit.EventMembershipOpened), SubjectID: "x"})
		assert.Error(t, err)
	})

	t.Run("fails closed when the store fails", func(t *testing.T) {
		m := NewMetrics(prometheus.NewRegistry())
		pub := New(failingStore{memory.NewInMemoryStore()}, WithMetrics(m))
		err := pub.Emit(ctx, audit.Event{Action: string(audit.EventJournalsMerged), SubjectID: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Equal(t, 1.0, promtest.ToFloat64(m.PersistFailures))
	})
}
