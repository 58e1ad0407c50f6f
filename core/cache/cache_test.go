package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/FocuswithJustin/swordverse/core/canon"
)

func TestLRUCache_BasicOperations(t *testing.T) {
	config := Config{
		MaxSize: 3,
	}
	cache := NewLRUCache[string, int](config)

	// Test Put and Get
	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("c", 3)

	if v, ok := cache.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
	if v, ok := cache.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %d, %v; want 2, true", v, ok)
	}
	if v, ok := cache.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) = %d, %v; want 3, true", v, ok)
	}

	// Test non-existent key
	if _, ok := cache.Get("d"); ok {
		t.Error("Get(d) should return false")
	}

	// Test Len
	if n := cache.Len(); n != 3 {
		t.Errorf("Len() = %d; want 3", n)
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	var evicted []string
	config := Config{
		MaxSize: 2,
		OnEvict: func(key, value interface{}) {
			evicted = append(evicted, key.(string))
		},
	}
	cache := NewLRUCache[string, int](config)

	cache.Put("a", 1)
	cache.Put("b", 2)

	// Touch "a" so that "b" becomes the oldest entry.
	cache.Get("a")
	cache.Put("c", 3)

	if _, ok := cache.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := cache.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v; want [b]", evicted)
	}

	stats := cache.Stats()
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d; want 1", stats.Evictions)
	}
	if stats.Size != 2 || stats.MaxSize != 2 {
		t.Errorf("Size, MaxSize = %d, %d; want 2, 2", stats.Size, stats.MaxSize)
	}
}

func TestLRUCache_UpdateDoesNotEvict(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: 2})
	cache.Put("a", 1)
	cache.Put("b", 2)
	cache.Put("a", 10)

	if v, _ := cache.Get("a"); v != 10 {
		t.Errorf("Get(a) = %d; want 10", v)
	}
	if _, ok := cache.Get("b"); !ok {
		t.Error("b should still be cached")
	}
	if e := cache.Stats().Evictions; e != 0 {
		t.Errorf("Evictions = %d; want 0", e)
	}
}

func TestLRUCache_RemoveAndClear(t *testing.T) {
	cache := NewLRUCache[int, string](DefaultConfig())
	for i := 0; i < 10; i++ {
		cache.Put(i, fmt.Sprint(i))
	}

	cache.Remove(3)
	if _, ok := cache.Get(3); ok {
		t.Error("3 should have been removed")
	}
	if n := cache.Len(); n != 9 {
		t.Errorf("Len() = %d; want 9", n)
	}

	cache.Clear()
	if n := cache.Len(); n != 0 {
		t.Errorf("Len() after Clear = %d; want 0", n)
	}
}

func TestLRUCache_Stats(t *testing.T) {
	cache := NewLRUCache[string, int](Config{MaxSize: -1})
	cache.Put("a", 1)
	cache.Get("a")
	cache.Get("a")
	cache.Get("missing")

	stats := cache.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Hits, Misses = %d, %d; want 2, 1", stats.Hits, stats.Misses)
	}
	if stats.MaxSize != 0 {
		t.Errorf("MaxSize = %d; want 0 (unlimited)", stats.MaxSize)
	}
}

func TestBlockCache(t *testing.T) {
	bc := NewBlockCache(2)

	ot0 := BlockKey{Testament: canon.OT, BufferID: 0}
	nt0 := BlockKey{Testament: canon.NT, BufferID: 0}
	ot1 := BlockKey{Testament: canon.OT, BufferID: 1}

	bc.Put(ot0, make([]byte, 100))
	bc.Put(nt0, make([]byte, 50))

	if got := bc.Stats().TotalBytes; got != 150 {
		t.Errorf("TotalBytes = %d; want 150", got)
	}

	// Same buffer id in the other testament is a different block.
	if b, ok := bc.Get(nt0); !ok || len(b) != 50 {
		t.Errorf("Get(nt0) = %d bytes, %v; want 50, true", len(b), ok)
	}

	// ot0 is now the oldest and is evicted.
	bc.Put(ot1, make([]byte, 10))
	if _, ok := bc.Get(ot0); ok {
		t.Error("ot0 should have been evicted")
	}
	if got := bc.Stats().TotalBytes; got != 60 {
		t.Errorf("TotalBytes = %d; want 60", got)
	}

	// Replacing a block adjusts the byte count.
	bc.Put(ot1, make([]byte, 20))
	if got := bc.Stats().TotalBytes; got != 70 {
		t.Errorf("TotalBytes after replace = %d; want 70", got)
	}

	bc.Clear()
	if bc.Len() != 0 || bc.Stats().TotalBytes != 0 {
		t.Errorf("after Clear: Len=%d TotalBytes=%d; want 0, 0", bc.Len(), bc.Stats().TotalBytes)
	}
}

func TestBlockCache_Concurrent(t *testing.T) {
	bc := NewBlockCache(8)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := BlockKey{Testament: canon.OT, BufferID: uint32((g + i) % 16)}
				if _, ok := bc.Get(key); !ok {
					bc.Put(key, make([]byte, 4))
				}
			}
		}(g)
	}
	wg.Wait()

	if n := bc.Len(); n > 8 {
		t.Errorf("Len() = %d; want <= 8", n)
	}
	if got, want := bc.Stats().TotalBytes, int64(bc.Len()*4); got != want {
		t.Errorf("TotalBytes = %d; want %d", got, want)
	}
}
