package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryItem struct {
	data     []byte
	expireAt time.Time
	usedAt   time.Time
}

// MemoryCache is an in-process Service with LRU eviction. It backs the
// layered cache and stands in for Redis on single-node deployments.
type MemoryCache struct {
	mu         sync.Mutex
	items      map[string]*memoryItem
	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
		DefaultTTL:      24 * time.Hour,
		Now:             time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	mc := &MemoryCache{
		items:      make(map[string]*memoryItem),
		maxSize:    cfg.MaxSize,
		defaultTTL: cfg.DefaultTTL,
		now:        cfg.Now,
		stop:       make(chan struct{}),
	}
	go mc.cleanup(cfg.CleanupInterval)
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	mc.put(key, data, expiration)
	return nil
}

func (mc *MemoryCache) put(key string, data []byte, expiration time.Duration) {
	if expiration <= 0 {
		expiration = mc.defaultTTL
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if _, ok := mc.items[key]; !ok && len(mc.items) >= mc.maxSize {
		mc.evictLocked()
	}
	now := mc.now()
	mc.items[key] = &memoryItem{data: data, expireAt: now.Add(expiration), usedAt: now}
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := mc.lookup(key)
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (mc *MemoryCache) lookup(key string) ([]byte, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	item, ok := mc.items[key]
	if !ok {
		return nil, false
	}
	now := mc.now()
	if !now.Before(item.expireAt) {
		delete(mc.items, key)
		return nil, false
	}
	item.usedAt = now
	return item.data, true
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		delete(mc.items, k)
	}
	return nil
}

func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (string, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	now := mc.now()
	if item, ok := mc.items[key]; ok && now.Before(item.expireAt) {
		return "", nil
	}
	token := uuid.NewString()
	mc.items[key] = &memoryItem{data: []byte(token), expireAt: now.Add(ttl), usedAt: now}
	return token, nil
}

func (mc *MemoryCache) Unlock(_ context.Context, key, token string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	item, ok := mc.items[key]
	if !ok || string(item.data) != token {
		return ErrNotLocked
	}
	delete(mc.items, key)
	return nil
}

// Len counts live and not yet swept entries.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.items)
}

func (mc *MemoryCache) evictLocked() {
	var (
		oldest string
		at     time.Time
	)
	for k, item := range mc.items {
		if oldest == "" || item.usedAt.Before(at) {
			oldest, at = k, item.usedAt
		}
	}
	if oldest != "" {
		delete(mc.items, oldest)
	}
}

func (mc *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := mc.now()
			for k, item := range mc.items {
				if !now.Before(item.expireAt) {
					delete(mc.items, k)
				}
			}
			mc.mu.Unlock()
		case <-mc.stop:
			return
		}
	}
}

func (mc *MemoryCache) Close() error {
	mc.stopOnce.Do(func() { close(mc.stop) })
	return nil
}
