// Package cache memoises city series reads. Consecutive target years share
// most of their climatology files, so a run re-requests the same series many
// times.
package cache

import (
	"context"
	"sync"

	"github.com/couchcryptid/city-climate-stats/internal/domain"
	"github.com/couchcryptid/city-climate-stats/internal/observability"
)

// CachedReader wraps a SeriesReader with an in-memory LRU cache.
type CachedReader struct {
	inner   domain.SeriesReader
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedReader creates a cache decorator around a series reader.
func NewCachedReader(inner domain.SeriesReader, maxEntries int, metrics *observability.Metrics) *CachedReader {
	return &CachedReader{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedReader) ReadSeries(ctx context.Context, req domain.SeriesRequest) (domain.Series, error) {
	key := req.Key()
	if s, ok := c.cache.get(key); ok {
		c.metrics.SeriesCache.WithLabelValues("hit").Inc()
		return s, nil
	}
	c.metrics.SeriesCache.WithLabelValues("miss").Inc()

	s, err := c.inner.ReadSeries(ctx, req)
	if err != nil {
		return s, err
	}
	c.cache.put(key, s)
	return s, nil
}

// lruCache is a thread-safe LRU cache of series. Cached series are shared, so
// callers must not modify the returned slices.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.Series
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: max(maxEntries, 1),
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.Series, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Series{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.Series) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
