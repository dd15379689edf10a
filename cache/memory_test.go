package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_PutGet(t *testing.T) {
	c := NewMemoryCache(MemoryConfig{})
	ctx := context.Background()

	values := map[string]string{"greeting.hello": "Hello"}
	if err := c.Put(ctx, "en", "", values); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := c.Get(ctx, "en", "")
	if !ok {
		t.Fatal("Get missed a freshly stored entry")
	}
	if got["greeting.hello"] != "Hello" {
		t.Errorf("got %v", got)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(MemoryConfig{})
	if _, ok := c.Get(context.Background(), "en", ""); ok {
		t.Error("Get hit on an empty cache")
	}
}

func TestMemoryCache_CategoryScopedEntries(t *testing.T) {
	c := NewMemoryCache(MemoryConfig{})
	ctx := context.Background()

	c.Put(ctx, "en", "", map[string]string{"a": "locale-wide"})
	c.Put(ctx, "en", "shop", map[string]string{"a": "shop-scoped"})

	wide, _ := c.Get(ctx, "en", "")
	scoped, _ := c.Get(ctx, "en", "shop")
	if wide["a"] != "locale-wide" || scoped["a"] != "shop-scoped" {
		t.Errorf("entries collided: wide=%v scoped=%v", wide, scoped)
	}
}

func TestMemoryCache_StaleEntryMisses(t *testing.T) {
	c := NewMemoryCache(MemoryConfig{TTL: time.Minute})
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Put(ctx, "en", "", map[string]string{"a": "A"})

	// Still fresh just inside the window.
	c.now = func() time.Time { return base.Add(59 * time.Second) }
	if _, ok := c.Get(ctx, "en", ""); !ok {
		t.Error("entry inside the TTL should be served")
	}

	// Stale past the window; the entry is also evicted.
	c.now = func() time.Time { return base.Add(61 * time.Second) }
	if _, ok := c.Get(ctx, "en", ""); ok {
		t.Error("stale entry must not be served")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after stale eviction", c.Len())
	}
}

func TestMemoryCache_Invalidate(t *testing.T) {
	c := NewMemoryCache(MemoryConfig{})
	ctx := context.Background()

	c.Put(ctx, "en", "", map[string]string{"a": "A"})
	c.Put(ctx, "en", "shop", map[string]string{"b": "B"})
	c.Put(ctx, "en", "auth", map[string]string{"c": "C"})
	c.Put(ctx, "ru", "", map[string]string{"d": "D"})

	if err := c.Invalidate(ctx, "en"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	for _, category := range []string{"", "shop", "auth"} {
		if _, ok := c.Get(ctx, "en", category); ok {
			t.Errorf("en/%q survived invalidation", category)
		}
	}
	if _, ok := c.Get(ctx, "ru", ""); !ok {
		t.Error("ru entry should be untouched")
	}
}

func TestMemoryCache_PutCopiesValues(t *testing.T) {
	c := NewMemoryCache(MemoryConfig{})
	ctx := context.Background()

	values := map[string]string{"a": "original"}
	c.Put(ctx, "en", "", values)
	values["a"] = "mutated"

	got, _ := c.Get(ctx, "en", "")
	if got["a"] != "original" {
		t.Error("cache entry aliases the caller's map")
	}
}

func TestMemoryCache_DefaultTTL(t *testing.T) {
	c := NewMemoryCache(MemoryConfig{})
	if c.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", c.TTL(), DefaultTTL)
	}
	c = NewMemoryCache(MemoryConfig{TTL: -time.Second})
	if c.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v for a negative config, want %v", c.TTL(), DefaultTTL)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(MemoryConfig{})
	ctx := context.Background()
	c.Put(ctx, "en", "", map[string]string{"a": "A"})
	c.Put(ctx, "ru", "", map[string]string{"b": "B"})

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewMemoryCache(MemoryConfig{})
	ctx := context.Background()
	locales := []string{"en", "ru", "ky"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			locale := locales[n%len(locales)]
			for j := 0; j < 100; j++ {
				c.Put(ctx, locale, "", map[string]string{"k": "v"})
				c.Get(ctx, locale, "")
				if j%10 == 0 {
					c.Invalidate(ctx, locale)
				}
			}
		}(i)
	}
	wg.Wait()
}
