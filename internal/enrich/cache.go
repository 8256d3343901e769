package enrich

import (
	"container/list"
	"sync"

	"golang.org/x/crypto/blake2b"
)

type cacheKey [blake2b.Size256]byte

func keyFor(text string) cacheKey {
	return blake2b.Sum256([]byte(text))
}

type cacheEntry struct {
	key    cacheKey
	result Result
}

// resultCache is a bounded LRU of enrichment results keyed by a content hash.
type resultCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[cacheKey]*list.Element
}

func newResultCache(capacity int) *resultCache {
	return &resultCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[cacheKey]*list.Element, capacity),
	}
}

func (c *resultCache) get(key cacheKey) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return Result{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).result, true
}

// merge stores the non-nil fields of r under key, keeping fields already
// cached that r lacks.
func (c *resultCache) merge(key cacheKey, r Result) {
	if r.IsEmpty() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		entry := el.Value.(*cacheEntry)
		if r.Summary != nil {
			entry.result.Summary = r.Summary
		}
		if r.Sentiment != nil {
			entry.result.Sentiment = r.Sentiment
		}
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&cacheEntry{key: key, result: r})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
