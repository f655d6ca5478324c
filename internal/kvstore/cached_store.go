package kvstore

import (
	"context"
	"sync"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte = 1024 * 1024
	// seconds
	cacheExpire = 10 * 60
)

var _ Store = (*CachedStore)(nil)

// CachedStore is a read-through cache in front of another store.
// Every write goes to the backing store first and then drops the cached entries.
// A read that overlapped a write does not fill the cache.
type CachedStore struct {
	store Store
	cache *freecache.Cache

	mu         sync.Mutex
	generation uint64
}

func NewCachedStore(store Store, cacheSizeMB int) *CachedStore {
	if cacheSizeMB <= 0 {
		cacheSizeMB = 1
	}
	return &CachedStore{
		store: store,
		cache: freecache.NewCache(cacheSizeMB * megabyte),
	}
}

func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if value, err := s.cache.Get([]byte(key)); err == nil {
		log.Tracef("kvstore cache hit: %s", key)
		return value, nil
	}

	s.mu.Lock()
	generation := s.generation
	s.mu.Unlock()

	value, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		log.Tracef("kvstore cache skip %s: written during read", key)
		return value, nil
	}
	if err := s.cache.Set([]byte(key), value, cacheExpire); err != nil {
		log.Debugf("kvstore cache set %s: %s", key, err)
	}
	return value, nil
}

func (s *CachedStore) Set(ctx context.Context, key string, value []byte) error {
	defer s.invalidate(key)
	return s.store.Set(ctx, key, value)
}

func (s *CachedStore) Delete(ctx context.Context, keys ...string) error {
	defer s.invalidate(keys...)
	return s.store.Delete(ctx, keys...)
}

func (s *CachedStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	return s.store.Keys(ctx, pattern)
}

func (s *CachedStore) Apply(ctx context.Context, ops ...Op) error {
	keys := make([]string, 0, len(ops))
	for _, op := range ops {
		keys = append(keys, op.Key)
	}
	defer s.invalidate(keys...)
	return s.store.Apply(ctx, ops...)
}

func (s *CachedStore) invalidate(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	for _, key := range keys {
		s.cache.Del([]byte(key))
	}
}
