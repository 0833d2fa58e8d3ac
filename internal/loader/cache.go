package loader

import (
	"container/list"
	"sync"
	"time"

	"github.com/hyperjump/midashi/internal/doctree"
)

// Cache is an LRU cache of parsed document trees keyed by location. Each entry carries
// a version (file modification stamp, empty for remote documents) and an optional
// expiry; a lookup with a different version or after expiry misses.
type Cache struct {
	capacity int
	cache    map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
	now      func() time.Time
}

type cacheEntry struct {
	key     string
	version string
	root    *doctree.Node
	expires time.Time
}

// NewCache creates a cache holding at most capacity trees. capacity <= 0 disables caching.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		cache:    make(map[string]*list.Element),
		lru:      list.New(),
		now:      time.Now,
	}
}

// Get returns the cached tree for key if it is present, has the given version and has
// not expired. Stale entries are dropped.
func (c *Cache) Get(key, version string) (*doctree.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if entry.version != version || (!entry.expires.IsZero() && c.now().After(entry.expires)) {
		c.remove(elem)
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return entry.root, true
}

// Set stores root for key, evicting the least recently used entry if at capacity.
// ttl <= 0 means the entry does not expire.
func (c *Cache) Set(key, version string, root *doctree.Node, ttl time.Duration) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}
	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		entry.version, entry.root, entry.expires = version, root, expires
		return
	}

	elem := c.lru.PushFront(&cacheEntry{key: key, version: version, root: root, expires: expires})
	c.cache[key] = elem

	if c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// Invalidate drops the entry for key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.cache[key]; ok {
		c.remove(elem)
	}
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*list.Element)
	c.lru.Init()
}

// Len returns the number of cached trees.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *Cache) remove(elem *list.Element) {
	c.lru.Remove(elem)
	delete(c.cache, elem.Value.(*cacheEntry).key)
}
