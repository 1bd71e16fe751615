package auth

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"cardealer/internal/model"
)

func testUser(name string) *model.User {
	return &model.User{ID: uuid.New(), Username: name, Email: name + "@example.com", Role: model.RoleClient}
}

func TestSessionCache_HitWithinTTL(t *testing.T) {
	cache := NewSessionCache(60*time.Second, 10)
	user := testUser("alice")

	cache.Put("alice", user)

	got, ok := cache.Get("alice")
	assert.True(t, ok)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Username, got.Username)

	// Repeated reads within the TTL return the same snapshot.
	again, ok := cache.Get("alice")
	assert.True(t, ok)
	assert.Equal(t, got, again)
}

func TestSessionCache_ReturnsCopy(t *testing.T) {
	cache := NewSessionCache(60*time.Second, 10)
	cache.Put("alice", testUser("alice"))

	got, ok := cache.Get("alice")
	assert.True(t, ok)
	got.Role = model.RoleAdmin

	fresh, ok := cache.Get("alice")
	assert.True(t, ok)
	assert.Equal(t, model.RoleClient, fresh.Role)
}

func TestSessionCache_TTLExpiry(t *testing.T) {
	now := time.Now()
	cache := NewSessionCache(60*time.Second, 10)
	cache.now = func() time.Time { return now }

	cache.Put("alice", testUser("alice"))

	now = now.Add(60 * time.Second)
	_, ok := cache.Get("alice")
	assert.True(t, ok, "entry exactly at the TTL boundary is still fresh")

	now = now.Add(time.Second)
	_, ok = cache.Get("alice")
	assert.False(t, ok, "entry older than the TTL is a miss")
	assert.Equal(t, 0, cache.Len(), "stale entry is purged on read")
}

func TestSessionCache_CapacityEviction(t *testing.T) {
	cache := NewSessionCache(time.Hour, 500)

	for i := 0; i < 501; i++ {
		cache.Put(fmt.Sprintf("user-%d", i), testUser(fmt.Sprintf("user-%d", i)))
	}

	assert.Equal(t, 500, cache.Len(), "cache never exceeds capacity")

	_, ok := cache.Get("user-0")
	assert.False(t, ok, "oldest-inserted entry is the eviction victim")

	_, ok = cache.Get("user-500")
	assert.True(t, ok)
}

func TestSessionCache_EvictionIsInsertionOrderNotLRU(t *testing.T) {
	cache := NewSessionCache(time.Hour, 2)

	cache.Put("first", testUser("first"))
	cache.Put("second", testUser("second"))

	// Reading "first" must not protect it from eviction.
	_, ok := cache.Get("first")
	assert.True(t, ok)

	cache.Put("third", testUser("third"))

	_, ok = cache.Get("first")
	assert.False(t, ok)
	_, ok = cache.Get("second")
	assert.True(t, ok)
	_, ok = cache.Get("third")
	assert.True(t, ok)
}

func TestSessionCache_OverwriteDoesNotGrow(t *testing.T) {
	cache := NewSessionCache(time.Hour, 2)

	cache.Put("alice", testUser("alice"))
	cache.Put("alice", testUser("alice-updated"))
	assert.Equal(t, 1, cache.Len())

	got, ok := cache.Get("alice")
	assert.True(t, ok)
	assert.Equal(t, "alice-updated", got.Username)
}

func TestSessionCache_Invalidate(t *testing.T) {
	cache := NewSessionCache(time.Hour, 10)

	cache.Put("alice", testUser("alice"))
	cache.Invalidate("alice")

	_, ok := cache.Get("alice")
	assert.False(t, ok, "invalidated entry always misses, even before the TTL")

	// Invalidating an absent key is a no-op.
	cache.Invalidate("missing")
	assert.Equal(t, 0, cache.Len())
}
