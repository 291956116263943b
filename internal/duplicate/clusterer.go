// Package duplicate groups entities of one kind into sets of candidate
// duplicates and serves those sets to the merge views.
package duplicate

import (
	"context"
	"slices"

	"github.com/gallandarakhneorg/labmanager-sub016/internal/similarity"
)

// checkEvery is how many outer iterations run between cancellation checks.
const checkEvery = 64

// Clusterer computes the connected components of the candidate-duplicate
// relation. Two entities land in the same cluster when a chain of
// pairwise candidates links them, even if they are not candidates of each
// other. Singletons are dropped.
type Clusterer[T any] struct {
	cmp similarity.Comparator[T]
}

func NewClusterer[T any](cmp similarity.Comparator[T]) *Clusterer[T] {
	return &Clusterer[T]{cmp: cmp}
}

// Cluster returns every cluster of two or more entities. Inside a cluster
// entities are sorted by preference, so the first one is the suggested
// merge target. Clusters are sorted by their first entity. The result does
// not depend on the order of items.
func (c *Clusterer[T]) Cluster(ctx context.Context, items []T) ([][]T, error) {
	n := len(items)
	if n < 2 {
		return nil, ctx.Err()
	}

	// fixed iteration order so cancellation points are reproducible
	order := make([]T, n)
	copy(order, items)
	slices.SortFunc(order, func(a, b T) int {
		return similarity.CompareID(c.cmp.ID(a), c.cmp.ID(b))
	})

	sets := newDisjointSets(n)
	for i := 0; i < n; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for j := i + 1; j < n; j++ {
			if sets.find(i) == sets.find(j) {
				continue
			}
			if c.cmp.IsCandidateDuplicate(order[i], order[j]) {
				sets.union(i, j)
			}
		}
	}

	groups := make(map[int][]T)
	for i := 0; i < n; i++ {
		root := sets.find(i)
		groups[root] = append(groups[root], order[i])
	}

	clusters := make([][]T, 0, len(groups))
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		slices.SortFunc(g, c.cmp.Compare)
		clusters = append(clusters, g)
	}
	slices.SortFunc(clusters, func(a, b []T) int {
		return c.cmp.Compare(a[0], b[0])
	})
	return clusters, nil
}

// disjointSets is a union-find forest with path halving and union by size.
type disjointSets struct {
	parent []int
	size   []int
}

func newDisjointSets(n int) *disjointSets {
	d := &disjointSets{parent: make([]int, n), size: make([]int, n)}
	for i := range d.parent {
		d.parent[i] = i
		d.size[i] = 1
	}
	return d
}

func (d *disjointSets) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *disjointSets) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
}
