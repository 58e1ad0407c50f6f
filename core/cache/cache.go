// Package cache provides LRU caching for decompressed corpus blocks.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/golang/groupcache/lru"

	"github.com/FocuswithJustin/swordverse/core/canon"
)

// Cache is a generic LRU cache interface.
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache.
	Get(key K) (V, bool)

	// Put stores a value in the cache.
	Put(key K, value V)

	// Remove removes a value from the cache.
	Remove(key K)

	// Clear removes all entries from the cache.
	Clear()

	// Len returns the number of entries in the cache.
	Len() int

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	Size       int
	MaxSize    int
	TotalBytes int64
}

// Config contains cache configuration options.
type Config struct {
	// MaxSize is the maximum number of entries (0 = unlimited).
	MaxSize int

	// OnEvict is called whenever an entry leaves the cache, whether by
	// eviction, Remove or Clear.
	OnEvict func(key, value interface{})
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{
		MaxSize: 64,
	}
}

// lruCache is a thread-safe wrapper around groupcache's LRU list.
type lruCache[K comparable, V any] struct {
	mu     sync.Mutex
	config Config
	lru    *lru.Cache
	stats  Stats
}

// NewLRUCache creates a new LRU cache with the given configuration.
func NewLRUCache[K comparable, V any](config Config) Cache[K, V] {
	if config.MaxSize < 0 {
		config.MaxSize = 0
	}

	c := &lruCache[K, V]{
		config: config,
		lru:    lru.New(config.MaxSize),
	}
	if config.OnEvict != nil {
		c.lru.OnEvicted = func(key lru.Key, value interface{}) {
			config.OnEvict(key, value)
		}
	}
	return c
}

// Get retrieves a value and marks it most recently used.
func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(key)
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	return v.(V), true
}

// Put stores a value, evicting the least recently used entry when full.
func (c *lruCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.lru.Get(key); !exists && c.config.MaxSize > 0 && c.lru.Len() >= c.config.MaxSize {
		c.stats.Evictions++
	}
	c.lru.Add(key, value)
}

// Remove removes a value from the cache.
func (c *lruCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// Clear removes all entries from the cache.
func (c *lruCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
}

// Len returns the number of entries in the cache.
func (c *lruCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns cache statistics.
func (c *lruCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = c.lru.Len()
	s.MaxSize = c.config.MaxSize
	return s
}

// BlockKey identifies a compressed block within a module.
type BlockKey struct {
	Testament canon.Testament
	BufferID  uint32
}

// BlockCache caches decompressed blocks. Cached slices are shared between
// callers and must not be modified.
type BlockCache struct {
	cache Cache[BlockKey, []byte]
	bytes atomic.Int64
}

// NewBlockCache creates a block cache holding at most maxBlocks blocks.
func NewBlockCache(maxBlocks int) *BlockCache {
	bc := &BlockCache{}
	config := DefaultConfig()
	config.MaxSize = maxBlocks
	config.OnEvict = func(_, value interface{}) {
		bc.bytes.Add(-int64(len(value.([]byte))))
	}
	bc.cache = NewLRUCache[BlockKey, []byte](config)
	return bc
}

// Get retrieves a decompressed block.
func (c *BlockCache) Get(key BlockKey) ([]byte, bool) {
	return c.cache.Get(key)
}

// Put stores a decompressed block.
func (c *BlockCache) Put(key BlockKey, block []byte) {
	c.cache.Remove(key)
	c.bytes.Add(int64(len(block)))
	c.cache.Put(key, block)
}

// Clear removes all cached blocks.
func (c *BlockCache) Clear() {
	c.cache.Clear()
}

// Len returns the number of cached blocks.
func (c *BlockCache) Len() int {
	return c.cache.Len()
}

// Stats returns cache statistics, including the bytes held.
func (c *BlockCache) Stats() Stats {
	s := c.cache.Stats()
	s.TotalBytes = c.bytes.Load()
	return s
}
