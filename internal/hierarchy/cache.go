package hierarchy

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/metrics"
)

// CandidateCache memoizes child-code lists per (level, parent) for the lifetime of one seeding run.
// Background: every record under the same parent asks for the same list, and seeding runs files in
// parallel.
// Constraints:
// 1) entries are inserted once and never mutated or evicted;
// 2) concurrent misses on one key share a single store query;
// 3) failed lookups are not cached.
type CandidateCache struct {
	store Store
	mu    sync.RWMutex
	lists map[string][]string
	sf    singleflight.Group
}

func NewCandidateCache(store Store) *CandidateCache {
	return &CandidateCache{store: store, lists: make(map[string][]string)}
}

func cacheKey(parent string, level Level) string {
	return strconv.Itoa(int(level)) + ":" + parent
}

// Children returns the cached list for (parent, level), loading it on first use.
// The returned slice is shared and must not be modified.
func (c *CandidateCache) Children(ctx context.Context, parent string, level Level) ([]string, error) {
	key := cacheKey(parent, level)
	c.mu.RLock()
	list, ok := c.lists[key]
	c.mu.RUnlock()
	if ok {
		metrics.HierarchyCacheTotal.WithLabelValues("hit").Inc()
		return list, nil
	}
	metrics.HierarchyCacheTotal.WithLabelValues("miss").Inc()

	// The fill is detached from the caller's cancellation so one abandoned caller does not fail
	// the others waiting on the same key; each caller still returns on its own ctx.
	fillCtx := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(key, func() (any, error) {
		c.mu.RLock()
		if got, ok := c.lists[key]; ok {
			c.mu.RUnlock()
			return got, nil
		}
		c.mu.RUnlock()
		got, err := c.store.ListChildCodes(fillCtx, parent, level)
		if err != nil {
			return nil, err
		}
		if got == nil {
			got = []string{}
		}
		c.mu.Lock()
		if prev, ok := c.lists[key]; ok {
			got = prev
		} else {
			c.lists[key] = got
		}
		c.mu.Unlock()
		return got, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]string), nil
	}
}

// Len reports the number of cached parent scopes.
func (c *CandidateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lists)
}
