// Package cache provides an LRU decorator for on-demand report computation.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

// sharedTimeout bounds a computation shared by concurrent callers. It runs
// detached from any one caller's cancellation.
const sharedTimeout = 2 * time.Minute

// CachedCalculator wraps a Calculator with an in-memory LRU cache keyed by
// Params. Concurrent misses for the same key share one computation.
type CachedCalculator struct {
	inner   domain.Calculator
	cache   *lruCache
	group   singleflight.Group
	lookups *prometheus.CounterVec
}

// NewCachedCalculator creates a cache decorator around a calculator. lookups
// may be nil; otherwise it is incremented with result="hit" or "miss".
func NewCachedCalculator(inner domain.Calculator, maxEntries int, lookups *prometheus.CounterVec) *CachedCalculator {
	return &CachedCalculator{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		lookups: lookups,
	}
}

// Compute returns the cached report for p or computes and stores it. Errors are
// not cached. A caller whose ctx ends stops waiting, while the computation goes
// on for the other callers sharing it.
func (c *CachedCalculator) Compute(ctx context.Context, p domain.Params) (domain.Report, error) {
	key := p.Key()
	if r, ok := c.cache.get(key); ok {
		c.observe("hit")
		return r, nil
	}
	c.observe("miss")

	ch := c.group.DoChan(key, func() (any, error) {
		// A computation for key may have finished since the lookup above.
		if r, ok := c.cache.get(key); ok {
			return r, nil
		}
		sharedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedTimeout)
		defer cancel()
		r, err := c.inner.Compute(sharedCtx, p)
		if err != nil {
			return domain.Report{}, err
		}
		c.cache.put(key, r)
		return r, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.Report{}, res.Err
		}
		return res.Val.(domain.Report), nil
	case <-ctx.Done():
		return domain.Report{}, ctx.Err()
	}
}

// Len returns the number of cached reports.
func (c *CachedCalculator) Len() int { return c.cache.len() }

func (c *CachedCalculator) observe(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}

// lruCache is a thread-safe LRU of reports.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List // front is most recently used
	entries    map[string]*list.Element
}

type entry struct {
	key   string
	value domain.Report
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: max(maxEntries, 1),
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (domain.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return domain.Report{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).value, true
}

func (c *lruCache) put(key string, value domain.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).value = value
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, value: value})
	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
