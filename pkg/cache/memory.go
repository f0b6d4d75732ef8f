package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value    []byte
	expireAt time.Time // zero means no expiry
}

func (m memoryItem) expired(now time.Time) bool {
	return !m.expireAt.IsZero() && now.After(m.expireAt)
}

// MemoryCache implements Service in process. Locks only exclude callers of the same instance.
type MemoryCache struct {
	mu      sync.Mutex
	data    map[string]memoryItem
	maxSize int
	now     func() time.Time
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize: 1000,
		Now:     time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &MemoryCache{
		data:    make(map[string]memoryItem),
		maxSize: cfg.MaxSize,
		now:     cfg.Now,
	}
}

func (mc *MemoryCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, exists := mc.data[key]; !exists && len(mc.data) >= mc.maxSize {
		mc.evictLocked()
	}
	mc.data[key] = mc.itemLocked(value, expiration)
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	item, ok := mc.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if item.expired(mc.now()) {
		delete(mc.data, key)
		return nil, ErrCacheMiss
	}
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		delete(mc.data, k)
	}
	return nil
}

func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if item, ok := mc.data[key]; ok && !item.expired(mc.now()) {
		return false, nil
	}
	mc.data[key] = mc.itemLocked([]byte("locked"), ttl)
	return true, nil
}

func (mc *MemoryCache) Unlock(ctx context.Context, key string) error {
	return mc.Delete(ctx, key)
}

func (mc *MemoryCache) Close() error { return nil }

func (mc *MemoryCache) itemLocked(value []byte, expiration time.Duration) memoryItem {
	stored := make([]byte, len(value))
	copy(stored, value)
	item := memoryItem{value: stored}
	if expiration > 0 {
		item.expireAt = mc.now().Add(expiration)
	}
	return item
}

// evictLocked drops expired entries, or the one closest to expiry when none are.
func (mc *MemoryCache) evictLocked() {
	now := mc.now()
	victim := ""
	var soonest time.Time
	for k, item := range mc.data {
		if item.expired(now) {
			delete(mc.data, k)
			continue
		}
		if item.expireAt.IsZero() {
			continue
		}
		if victim == "" || item.expireAt.Before(soonest) {
			victim, soonest = k, item.expireAt
		}
	}
	if len(mc.data) < mc.maxSize {
		return
	}
	if victim == "" {
		for k := range mc.data {
			victim = k
			break
		}
	}
	delete(mc.data, victim)
}
