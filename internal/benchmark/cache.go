package benchmark

import (
	"fmt"
	"sync"
	"time"

	"github.com/wonhee/folio/internal/timeseries"
	"github.com/wonhee/folio/pkg/logger"
)

// Clock abstracts time.Now so cache expiry can be tested deterministically
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock returns the wall-clock implementation
func RealClock() Clock { return realClock{} }

const keyDateLayout = "20060102"

// Key builds the cache key for an instrument and date range
func Key(instrument string, start, end time.Time) string {
	return fmt.Sprintf("%s_%s_%s", instrument, start.Format(keyDateLayout), end.Format(keyDateLayout))
}

// Entry bundles a fetched price series with its derived return series
type Entry struct {
	Prices     *timeseries.Series
	Returns    *timeseries.Series
	Cumulative *timeseries.Series
}

type cacheEntry struct {
	entry     *Entry
	fetchedAt time.Time
}

// Cache is an in-memory TTL cache for benchmark series
// ⭐ SSOT: 벤치마크 시리즈 캐싱은 이 구조체에서만
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	clock   Clock
	logger  *logger.Logger
}

// NewCache creates a new benchmark cache
func NewCache(ttl time.Duration, clock Clock, log *logger.Logger) *Cache {
	if clock == nil {
		clock = RealClock()
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		clock:   clock,
		logger:  log,
	}
}

// Get retrieves an entry from cache
// Stale entries are treated as misses and left for the next Put to overwrite
func (c *Cache) Get(key string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if c.clock.Now().Sub(cached.fetchedAt) >= c.ttl {
		c.logger.WithField("key", key).Debug("Cache entry expired")
		return nil, false
	}

	return cached.entry, true
}

// Put stores an entry in cache
func (c *Cache) Put(key string, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		entry:     entry,
		fetchedAt: c.clock.Now(),
	}

	c.logger.WithFields(map[string]interface{}{
		"key":    key,
		"points": entry.Prices.Len(),
	}).Debug("Stored benchmark series in cache")
}

// Delete removes an entry from cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear removes all entries and returns how many were dropped
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := len(c.entries)
	c.entries = make(map[string]cacheEntry)

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleared benchmark cache")
	}

	return count
}

// Len returns the number of cached entries, stale ones included
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
