package recall

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/clewlabs/memoria/pkg/types"
)

const (
	// DefaultCacheTTL is how long a per-user archive snapshot stays fresh.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultFetchLimit bounds how many items one snapshot fetch pulls
	// from the archive store.
	DefaultFetchLimit = 100

	// maxCachedUsers caps how many per-user entries the cache retains.
	maxCachedUsers = 1000
)

// FetchFunc reads the most recent archive items for a user, ordered by
// timestamp descending. It is the engine's only collaborator.
type FetchFunc func(ctx context.Context, userID string, limit int) ([]*types.ArchiveItem, error)

// CacheConfig tunes a SnapshotCache. Zero values select the defaults, so
// CacheConfig{} is a valid production configuration.
type CacheConfig struct {
	TTL        time.Duration
	FetchLimit int
	Clock      func() time.Time // injected for deterministic tests
}

// SnapshotCache memoizes the per-user archive read behind a short TTL.
// Entries are replaced as whole values; concurrent misses for the same user
// may each fetch independently and the last write wins, which is acceptable
// because the fetch is idempotent and staleness is tolerated by design.
type SnapshotCache struct {
	fetch  FetchFunc
	ttl    time.Duration
	limit  int
	now    func() time.Time
	logger *slog.Logger

	mu      sync.RWMutex
	entries *lru.Cache[string, *snapshotEntry]
}

type snapshotEntry struct {
	items  []*types.ArchiveItem
	expiry time.Time
}

// NewSnapshotCache creates a snapshot cache over the given fetch collaborator.
func NewSnapshotCache(fetch FetchFunc, cfg CacheConfig, logger *slog.Logger) *SnapshotCache {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.FetchLimit == 0 {
		cfg.FetchLimit = DefaultFetchLimit
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := lru.New[string, *snapshotEntry](maxCachedUsers)
	if err != nil {
		// Only reachable with an invalid size constant.
		panic(fmt.Sprintf("failed to create snapshot cache: %v", err))
	}

	return &SnapshotCache{
		fetch:   fetch,
		ttl:     cfg.TTL,
		limit:   cfg.FetchLimit,
		now:     cfg.Clock,
		logger:  logger,
		entries: entries,
	}
}

// GetSnapshot returns the user's corpus, fetching through to the archive
// store only when no unexpired entry exists. A failed fetch leaves the
// cache untouched.
func (c *SnapshotCache) GetSnapshot(ctx context.Context, userID string) ([]*types.ArchiveItem, error) {
	now := c.now()

	c.mu.RLock()
	entry, ok := c.entries.Get(userID)
	c.mu.RUnlock()
	if ok && entry.expiry.After(now) {
		c.logger.Debug("recall: using cached archive", "userId", userID)
		return entry.items, nil
	}

	items, err := c.fetch(ctx, userID, c.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch archive for %s: %w", userID, err)
	}

	c.mu.Lock()
	c.entries.Add(userID, &snapshotEntry{items: items, expiry: now.Add(c.ttl)})
	c.mu.Unlock()

	return items, nil
}

// Invalidate drops the user's entry so the next read is a forced refresh.
// The write path calls this after a new capture to shrink the staleness
// window opportunistically.
func (c *SnapshotCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries.Contains(userID) {
		c.logger.Info("invalidating recall cache", "userId", userID)
		c.entries.Remove(userID)
	}
}

// FetchLimit reports the configured per-fetch item bound.
func (c *SnapshotCache) FetchLimit() int {
	return c.limit
}
