package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUBasicOperations(t *testing.T) {
	c := NewLRUCache[string, int](Config{MaxSize: 10})

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned a value")
	}

	c.Put("a", 1)
	c.Put("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	c.Put("a", 10)
	if v, _ := c.Get("a"); v != 10 {
		t.Errorf("Get(a) after overwrite = %d, want 10", v)
	}
	if c.Len() != 2 {
		t.Errorf("Len() after overwrite = %d, want 2", c.Len())
	}

	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get after Remove returned a value")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}

func TestLRUEviction(t *testing.T) {
	var evicted []string
	c := NewLRUCache[string, int](Config{
		MaxSize: 3,
		OnEvict: func(key, value interface{}) {
			evicted = append(evicted, key.(string))
		},
	})

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Put("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
	if s := c.Stats(); s.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", s.Evictions)
	}
}

func TestLRUTTLExpiry(t *testing.T) {
	c := NewLRUCache[string, int](Config{MaxSize: 10, TTL: 10 * time.Millisecond})

	c.Put("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("fresh entry missing")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Error("expired entry still served")
	}
}

func TestLRUStats(t *testing.T) {
	c := NewLRUCache[string, int](Config{MaxSize: 5})

	c.Put("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("nope")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("stats = %+v, want 2 hits / 1 miss", s)
	}
	if s.Size != 1 || s.MaxSize != 5 {
		t.Errorf("stats = %+v, want size 1 / max 5", s)
	}
}

func TestLRUConcurrentAccess(t *testing.T) {
	c := NewLRUCache[int, int](Config{MaxSize: 64})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c.Put(i%32, g*1000+i)
				c.Get(i % 32)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 32 {
		t.Errorf("Len() = %d, want at most 32", c.Len())
	}
}

func TestPayloadCache(t *testing.T) {
	c := NewDefaultPayloadCache()

	payload := []byte(`{"en_name": "Genesis"}`)
	c.Put("books/gen.json", payload)

	got, ok := c.Get("books/gen.json")
	if !ok || string(got) != string(payload) {
		t.Errorf("Get = %q, %v", got, ok)
	}

	c.Remove("books/gen.json")
	if _, ok := c.Get("books/gen.json"); ok {
		t.Error("payload survived Remove")
	}
}

func TestPayloadCacheBounded(t *testing.T) {
	c := NewPayloadCache(Config{MaxSize: 2})

	for i := 0; i < 4; i++ {
		c.Put(fmt.Sprintf("books/%d.json", i), []byte("x"))
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want bounded at 2", c.Len())
	}
	if s := c.Stats(); s.Evictions != 2 {
		t.Errorf("Evictions = %d, want 2", s.Evictions)
	}
}
