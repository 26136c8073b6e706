package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCacheRepository is the in-process CacheRepository used when Redis is
// not configured or unreachable.
type MemoryCacheRepository struct {
	generation atomic.Int64
	searches   sync.Map
	rateLimits sync.Map
	mu         sync.Mutex
	now        func() time.Time
}

type searchEntry struct {
	value     []byte
	expiresAt time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{now: time.Now}
}

func (r *MemoryCacheRepository) Generation(_ context.Context) (int64, error) {
	return r.generation.Load(), nil
}

// BumpGeneration also drops every stored search, which can no longer be read.
func (r *MemoryCacheRepository) BumpGeneration(_ context.Context) error {
	r.generation.Add(1)
	r.searches.Range(func(key, _ interface{}) bool {
		r.searches.Delete(key)
		return true
	})
	return nil
}

func (r *MemoryCacheRepository) GetSearch(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := r.searches.Load(key)
	if !ok {
		return nil, false, nil
	}
	entry := val.(searchEntry)
	if r.now().After(entry.expiresAt) {
		r.searches.Delete(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (r *MemoryCacheRepository) SetSearch(_ context.Context, key string, value []byte, ttl time.Duration) error {
	r.searches.Store(key, searchEntry{value: value, expiresAt: r.now().Add(ttl)})
	return nil
}

func (r *MemoryCacheRepository) CheckRateLimit(_ context.Context, actorID int64, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var entry *rateLimitEntry
	if val, ok := r.rateLimits.Load(actorID); ok {
		entry = val.(*rateLimitEntry)
	}
	if entry == nil || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
	}
	entry.count++
	r.rateLimits.Store(actorID, entry)
	return entry.count <= limit, nil
}
