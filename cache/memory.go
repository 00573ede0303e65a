package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries 是 MemoryCache 的默认容量。
const DefaultMaxEntries = 256

// MemoryCache 是带过期时间的进程内 LRU 缓存，可并发使用。
type MemoryCache struct {
	mu      sync.Mutex
	max     int
	order   *list.List // 队首为最近使用
	entries map[string]*list.Element
	now     func() time.Time
}

type memoryEntry struct {
	key       string
	data      []byte
	expiresAt time.Time
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an LRU cache holding at most maxEntries items.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{
		max:     maxEntries,
		order:   list.New(),
		entries: map[string]*list.Element{},
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*memoryEntry)
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.remove(el)
		return nil, false, nil
	}
	c.order.MoveToFront(el)
	return e.data, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	if el, ok := c.entries[key]; ok {
		e := el.Value.(*memoryEntry)
		e.data, e.expiresAt = data, expiresAt
		c.order.MoveToFront(el)
		return nil
	}
	c.entries[key] = c.order.PushFront(&memoryEntry{key: key, data: data, expiresAt: expiresAt})
	for c.order.Len() > c.max {
		c.remove(c.order.Back())
	}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		c.remove(el)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *MemoryCache) Close() error { return nil }

func (c *MemoryCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*memoryEntry).key)
}
