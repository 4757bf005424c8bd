package pathfind

import (
	"container/list"

	"github.com/kikugo/steamdefense/grid"
)

// Finder is the entry point for pathfinding against one Grid. It owns
// an optional LRU result cache keyed on (start, goal, algorithm,
// heuristic, allow_diagonal).
type Finder struct {
	Grid      *grid.Grid
	cache     *lruCache
	cacheHits int
}

// NewFinder builds a Finder with an LRU cache capped at cacheSize
// entries. cacheSize <= 0 disables caching.
func NewFinder(g *grid.Grid, cacheSize int) *Finder {
	f := &Finder{Grid: g}
	if cacheSize > 0 {
		f.cache = newLRUCache(cacheSize)
	}
	return f
}

// CacheHits reports how many Find calls were served from cache.
func (f *Finder) CacheHits() int { return f.cacheHits }

// ClearCache drops every cached result.
func (f *Finder) ClearCache() {
	if f.cache != nil {
		f.cache.clear()
	}
}

// InvalidateCache drops cached results for a single start/goal pair,
// across every algorithm/heuristic/diagonal combination. Callers use
// this after a localized grid edit (e.g. a tower placed on a former
// path tile) instead of paying for a full ClearCache.
func (f *Finder) InvalidateCache(start, goal grid.Pos) {
	if f.cache != nil {
		f.cache.invalidate(start, goal)
	}
}

type cacheKey struct {
	start, goal grid.Pos
	algo        Algorithm
	heuristic   Heuristic
	diagonal    bool
}

type lruEntry struct {
	key    cacheKey
	result Result
}

// lruCache is a small fixed-capacity least-recently-used cache backed
// by a doubly linked list plus a lookup map, the conventional Go LRU
// shape (container/list front = most recently used).
type lruCache struct {
	capacity int
	ll       *list.List
	index    map[cacheKey]*list.Element
}

func newLRUCache(capacity int) *lruCache {
	return &lruCache{capacity: capacity, ll: list.New(), index: make(map[cacheKey]*list.Element)}
}

func (c *lruCache) get(key cacheKey) (Result, bool) {
	el, ok := c.index[key]
	if !ok {
		return Result{}, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*lruEntry).result, true
}

func (c *lruCache) put(key cacheKey, result Result) {
	if el, ok := c.index[key]; ok {
		el.Value.(*lruEntry).result = result
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&lruEntry{key: key, result: result})
	c.index[key] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.index, oldest.Value.(*lruEntry).key)
		}
	}
}

func (c *lruCache) clear() {
	c.ll.Init()
	c.index = make(map[cacheKey]*list.Element)
}

func (c *lruCache) invalidate(start, goal grid.Pos) {
	var toRemove []*list.Element
	for el := c.ll.Front(); el != nil; el = el.Next() {
		entry := el.Value.(*lruEntry)
		if entry.key.start == start && entry.key.goal == goal {
			toRemove = append(toRemove, el)
		}
	}
	for _, el := range toRemove {
		c.ll.Remove(el)
		delete(c.index, el.Value.(*lruEntry).key)
	}
}
