package auth

import (
	"sync"
	"time"

	"cardealer/internal/model"
)

// Defaults for the session cache. Both are tunable through Config.
const (
	DefaultSessionTTL       = 60 * time.Second
	DefaultSessionCacheSize = 500
)

type cacheEntry struct {
	user     model.User
	cachedAt time.Time
}

// SessionCache is a bounded in-memory map from user id to a user snapshot,
// used to skip a database round trip on every authenticated request.
//
// Expiry is lazy: entries are checked on read, there is no background sweep.
// Memory stays bounded through capacity eviction, which removes the
// oldest-inserted key (insertion order, not LRU — reads do not reorder).
// The cache is per-process; horizontally scaled instances each hold their own.
type SessionCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	order    []string
	ttl      time.Duration
	capacity int

	now func() time.Time // overridable in tests
}

// NewSessionCache creates an empty cache with the given TTL and capacity.
func NewSessionCache(ttl time.Duration, capacity int) *SessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if capacity <= 0 {
		capacity = DefaultSessionCacheSize
	}
	return &SessionCache{
		entries:  make(map[string]*cacheEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns a copy of the cached user if present and fresh. Stale entries
// are purged and reported as a miss.
func (c *SessionCache) Get(id string) (*model.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.cachedAt) > c.ttl {
		c.remove(id)
		return nil, false
	}
	user := entry.user
	return &user, true
}

// Put inserts or overwrites the snapshot for id. When the cache is full and
// the key is new, the oldest-inserted entry is evicted first.
func (c *SessionCache) Put(id string, user *model.User) {
	if user == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[id]; !exists {
		if len(c.entries) >= c.capacity && len(c.order) > 0 {
			c.remove(c.order[0])
		}
		c.order = append(c.order, id)
	}
	c.entries[id] = &cacheEntry{user: *user, cachedAt: c.now()}
}

// Invalidate removes the entry for id unconditionally. Called on logout and
// on profile or role changes so a still-valid token cannot resolve to a
// stale identity from this instance.
func (c *SessionCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(id)
}

// Len returns the number of resident entries, stale ones included.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove deletes id from both the map and the insertion-order list.
// Callers must hold the lock.
func (c *SessionCache) remove(id string) {
	if _, ok := c.entries[id]; !ok {
		return
	}
	delete(c.entries, id)
	for i, key := range c.order {
		if key == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
