package loader

import (
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores loaded templates keyed by template name.
//
// TTL semantics for Set: positive expires after the duration, zero or
// negative never expires.
type Cache interface {
	// Get returns ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) (Template, error)
	Set(ctx context.Context, key string, t Template, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type memoryEntry struct {
	expiresAt time.Time
	tmpl      Template
	key       string
}

// MemoryCache is an in-process LRU cache with per-entry expiration.
// Expired entries are dropped lazily on access.
type MemoryCache struct {
	items      map[string]*list.Element
	order      *list.List
	now        func() time.Time
	maxEntries int
	mu         sync.Mutex
}

// NewMemoryCache creates a MemoryCache holding at most maxEntries templates.
// Zero means unlimited.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		now:        time.Now,
		maxEntries: max(maxEntries, 0),
	}
}

// Get returns the cached template and marks it as recently used.
func (c *MemoryCache) Get(_ context.Context, key string) (Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return Template{}, ErrCacheMiss
	}

	e := elem.Value.(*memoryEntry)
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.remove(elem)
		return Template{}, ErrCacheMiss
	}

	c.order.MoveToFront(elem)
	return e.tmpl, nil
}

// Set stores t under key, evicting the least recently used entry when full.
func (c *MemoryCache) Set(_ context.Context, key string, t Template, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*memoryEntry)
		e.tmpl = t
		e.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return nil
	}

	if c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}

	c.items[key] = c.order.PushFront(&memoryEntry{key: key, tmpl: t, expiresAt: expiresAt})
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.remove(elem)
	}
	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// remove drops elem. Caller must hold the mutex.
func (c *MemoryCache) remove(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*memoryEntry).key)
}

// RedisCache shares loaded templates between processes through Redis.
// Templates are stored as JSON under "{prefix}:{name}".
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache creates a RedisCache. The client is owned by the caller.
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Get returns the cached template.
func (c *RedisCache) Get(ctx context.Context, key string) (Template, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Template{}, ErrCacheMiss
		}
		return Template{}, err
	}

	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return Template{}, fmt.Errorf("loader: decode cached template %q: %w", key, err)
	}
	return t, nil
}

// Set stores t under key. Redis treats a zero expiration as persistent.
func (c *RedisCache) Set(ctx context.Context, key string, t Template, ttl time.Duration) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("loader: encode template %q: %w", key, err)
	}
	return c.client.Set(ctx, c.key(key), data, max(ttl, 0)).Err()
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

// Clear removes every key under the prefix using SCAN.
// Without a prefix the whole database is flushed.
func (c *RedisCache) Clear(ctx context.Context) error {
	if c.prefix == "" {
		return c.client.FlushDB(ctx).Err()
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

func (c *RedisCache) key(name string) string {
	if c.prefix == "" {
		return name
	}
	return c.prefix + ":" + name
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)
