package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"comicshelf/internal/logger"
)

// Cache is a generic in-memory store with per-entry TTL. Entries
// expire purely by time; there is no eviction under memory pressure.
type Cache[K comparable, V any] interface {
	// Set stores a value with the specified TTL. A non-positive TTL
	// means the entry never expires.
	Set(key K, value V, ttl time.Duration)
	// Get retrieves a value and reports whether it was found and fresh
	Get(key K) (V, bool)
	// Delete removes a value
	Delete(key K)
	// Clear removes all values
	Clear()
	// Len returns the number of stored entries, expired or not
	Len() int
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type memoryCache[K comparable, V any] struct {
	items map[K]entry[V]
	mu    sync.RWMutex
	log   *logger.Logger
}

// NewMemory creates a new in-memory cache with the provided logger
func NewMemory[K comparable, V any](log *logger.Logger) Cache[K, V] {
	return &memoryCache[K, V]{
		items: make(map[K]entry[V]),
		log:   log,
	}
}

func (c *memoryCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}

	c.log.Debug("cache entry stored", map[string]interface{}{
		"key":  key,
		"size": len(c.items),
	})
}

func (c *memoryCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.items[key]
	if !found {
		var zero V
		return zero, false
	}

	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		var zero V
		return zero, false
	}

	return item.value, true
}

func (c *memoryCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *memoryCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]entry[V])
	c.log.Debug("cache cleared")
}

func (c *memoryCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// GetOrFill returns the cached value for key, or invokes fn and caches
// its result for ttl. Errors from fn are returned uncached.
func GetOrFill[K comparable, V any](c Cache[K, V], key K, ttl time.Duration, fn func() (V, error)) (V, error) {
	if val, found := c.Get(key); found {
		return val, nil
	}

	val, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}

	c.Set(key, val, ttl)
	return val, nil
}

// Key builds a deterministic cache key from an operation name and its
// parameters. Slice parameters are sorted so equivalent requests hash
// to the same key regardless of argument order.
func Key(op string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(op)
	for _, p := range params {
		b.WriteByte('|')
		switch v := p.(type) {
		case []string:
			sorted := append([]string(nil), v...)
			sort.Strings(sorted)
			b.WriteString(strings.Join(sorted, ","))
		default:
			fmt.Fprintf(&b, "%v", v)
		}
	}
	return b.String()
}
