package duplicate

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/similarity"
)

// neighbours links integers that differ by one and prefers the larger one.
type neighbours struct{}

func (neighbours) IsCandidateDuplicate(a, b int) bool { return a-b == 1 || b-a == 1 }
func (neighbours) Compare(a, b int) int               { return b - a }
func (neighbours) ID(e int) uuid.UUID {
	var u uuid.UUID
	u[15] = byte(e)
	return u
}

var _ similarity.Comparator[int] = neighbours{}

func TestClusterChainsAreTransitive(t *testing.T) {
	got, err := NewClusterer[int](neighbours{}).Cluster(context.Background(), []int{1, 2, 3, 10, 20, 21})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{21, 20}, {3, 2, 1}}, got)
}

func TestClusterDropsSingletons(t *testing.T) {
	got, err := NewClusterer[int](neighbours{}).Cluster(context.Background(), []int{1, 5, 9})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClusterSmallInputs(t *testing.T) {
	c := NewClusterer[int](neighbours{})
	for _, in := range [][]int{nil, {}, {4}} {
		got, err := c.Cluster(context.Background(), in)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestClusterIsIndependentOfInputOrder(t *testing.T) {
	items := []int{30, 2, 12, 31, 1, 11, 3, 40, 13, 50, 51, 52}
	c := NewClusterer[int](neighbours{})
	want, err := c.Cluster(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, want, 4)

	rng := rand.New(rand.NewPCG(1, 2))
	for range 20 {
		shuffled := append([]int(nil), items...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got, err := c.Cluster(context.Background(), shuffled)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestClusterStopsOnCancelledContext(t *testing.T) {
	items := make([]int, 200)
	for i := range items {
		items[i] = i
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClusterer[int](neighbours{}).Cluster(ctx, items)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDisjointSets(t *testing.T) {
	d := newDisjointSets(5)
	d.union(0, 1)
	d.union(3, 4)
	d.union(1, 4)
	assert.Equal(t, d.find(0), d.find(3))
	assert.NotEqual(t, d.find(0), d.find(2))
}
