package dira

import (
	"context"
	"sync"
	"time"

	"github.com/pfrederiksen/dira-lottery/internal/logger"
)

// Cache holds fetched subscriber counts with the time they were fetched, so
// repeated runs within TTL do not call the API again. It is safe for
// concurrent use by the fetches of one chunk.
type Cache struct {
	mu       sync.Mutex
	Counts   map[string]SubscriberCounts `json:"counts"`    // project|lottery → counts
	CachedAt map[string]time.Time        `json:"cached_at"` // key → fetch time
	TTL      time.Duration               `json:"-"`
}

// NewCache creates an empty cache.
func NewCache(ttl time.Duration) *Cache {
	c := &Cache{TTL: ttl}
	c.init()
	return c
}

// init makes a decoded cache usable when the file lacked a map.
func (c *Cache) init() {
	if c.Counts == nil {
		c.Counts = make(map[string]SubscriberCounts)
	}
	if c.CachedAt == nil {
		c.CachedAt = make(map[string]time.Time)
	}
}

func cacheKey(project, lottery string) string {
	return project + "|" + lottery
}

// Get returns cached counts unless they are missing or older than TTL.
// Expired entries are removed.
func (c *Cache) Get(project, lottery string) (SubscriberCounts, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()

	key := cacheKey(project, lottery)
	counts, exists := c.Counts[key]
	if !exists {
		return SubscriberCounts{}, false
	}

	cachedAt, hasTime := c.CachedAt[key]
	if !hasTime || time.Since(cachedAt) > c.TTL {
		delete(c.Counts, key)
		delete(c.CachedAt, key)
		return SubscriberCounts{}, false
	}

	return counts, true
}

// Set stores counts fetched now.
func (c *Cache) Set(project, lottery string, counts SubscriberCounts) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()

	key := cacheKey(project, lottery)
	c.Counts[key] = counts
	c.CachedAt[key] = time.Now()
}

// CleanExpired removes expired entries and returns how many were removed.
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := time.Now()

	for key, cachedAt := range c.CachedAt {
		if now.Sub(cachedAt) > c.TTL {
			delete(c.Counts, key)
			delete(c.CachedAt, key)
			removed++
		}
	}
	for key := range c.Counts {
		if _, ok := c.CachedAt[key]; !ok {
			delete(c.Counts, key)
			removed++
		}
	}

	return removed
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Counts)
}

// CachingFetcher serves counts from a Cache and stores successful fetches of
// the wrapped Fetcher in it. Failures are never cached.
type CachingFetcher struct {
	next    Fetcher
	cache   *Cache
	metrics *logger.Metrics
}

// NewCachingFetcher wraps next with cache.
func NewCachingFetcher(next Fetcher, cache *Cache) *CachingFetcher {
	return &CachingFetcher{
		next:    next,
		cache:   cache,
		metrics: logger.DefaultMetrics(),
	}
}

// FetchSubscribers implements Fetcher.
func (f *CachingFetcher) FetchSubscribers(ctx context.Context, project, lottery string) (SubscriberCounts, error) {
	if counts, ok := f.cache.Get(project, lottery); ok {
		f.metrics.IncrCounter("dira.cache.hit")
		return counts, nil
	}
	f.metrics.IncrCounter("dira.cache.miss")

	counts, err := f.next.FetchSubscribers(ctx, project, lottery)
	if err != nil {
		return SubscriberCounts{}, err
	}

	f.cache.Set(project, lottery, counts)
	return counts, nil
}
