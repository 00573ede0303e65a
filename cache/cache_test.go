package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestKeyIsStableAndOrderSensitive(t *testing.T) {
	a := Key("render", "https://x/a.png", "hello", 64)
	b := Key("render", "https://x/a.png", "hello", 64)
	if a != b {
		t.Fatalf("expected stable key, got %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "render:") || len(a) != len("render:")+64 {
		t.Fatalf("unexpected key format %q", a)
	}
	if c := Key("render", "hello", "https://x/a.png", 64); c == a {
		t.Fatalf("part order should change the key")
	}
}

func TestNullCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	var c Cache = NullCache{}
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("null cache should miss, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryCacheGetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(4)
	if _, ok, _ := c.Get(ctx, "missing"); ok {
		t.Fatalf("expected miss")
	}
	if err := c.Set(ctx, "a", []byte("1"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, ok, err := c.Get(ctx, "a")
	if err != nil || !ok || string(data) != "1" {
		t.Fatalf("get a = %q %v %v", data, ok, err)
	}
	c.Set(ctx, "a", []byte("2"), 0)
	if data, _, _ := c.Get(ctx, "a"); string(data) != "2" {
		t.Fatalf("overwrite failed, got %q", data)
	}
	c.Delete(ctx, "a")
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	c.Set(ctx, "a", []byte("a"), 0)
	c.Set(ctx, "b", []byte("b"), 0)
	c.Get(ctx, "a") // a 变为最近使用
	c.Set(ctx, "c", []byte("c"), 0)

	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok, _ := c.Get(ctx, k); !ok {
			t.Fatalf("expected %s to remain", k)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache(0)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit before expiry")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be dropped, len=%d", c.Len())
	}
}
