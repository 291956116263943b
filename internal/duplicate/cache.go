package duplicate

import (
	"context"
	"sync"
	"time"

	"github.com/gallandarakhneorg/labmanager-sub016/pkg/domain"
)

// Cache keeps the last clustering pass per kind. Entries are advisory: a
// merge re-validates everything it touches, so a stale entry can only show
// an outdated suggestion.
type Cache interface {
	Get(ctx context.Context, kind domain.Kind) ([]Cluster, bool, error)
	Set(ctx context.Context, kind domain.Kind, clusters []Cluster, ttl time.Duration) error
	Invalidate(ctx context.Context, kinds ...domain.Kind) error
}

type memoryEntry struct {
	clusters  []Cluster
	expiresAt time.Time
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[domain.Kind]memoryEntry
	clock   func() time.Time
}

// MemoryCacheOption configures a MemoryCache.
type MemoryCacheOption func(*MemoryCache)

// WithCacheClock sets the clock used for expiry.
func WithCacheClock(clock func() time.Time) MemoryCacheOption {
	return func(c *MemoryCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func NewMemoryCache(opts ...MemoryCacheOption) *MemoryCache {
	c := &MemoryCache{entries: make(map[domain.Kind]memoryEntry), clock: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, kind domain.Kind) ([]Cluster, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[kind]
	if !ok || !c.clock().Before(e.expiresAt) {
		return nil, false, nil
	}
	return cloneClusters(e.clusters), true, nil
}

func (c *MemoryCache) Set(_ context.Context, kind domain.Kind, clusters []Cluster, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[kind] = memoryEntry{clusters: cloneClusters(clusters), expiresAt: c.clock().Add(ttl)}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, kinds ...domain.Kind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range kinds {
		delete(c.entries, k)
	}
	return nil
}

func cloneClusters(in []Cluster) []Cluster {
	out := make([]Cluster, len(in))
	for i, cl := range in {
		out[i] = Cluster{Kind: cl.Kind, Members: append([]Member(nil), cl.Members...)}
	}
	return out
}
