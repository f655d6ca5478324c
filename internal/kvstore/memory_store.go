package kvstore

import (
	"context"
	"fmt"
	"path"
	"slices"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps everything in a map. Used in tests and for local
// development without redis or postgres.
type MemoryStore struct {
	mutex sync.RWMutex
	data  map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(value), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = slices.Clone(value)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("bad pattern [%s]: %w", pattern, err)
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var keys []string
	for key := range s.data {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *MemoryStore) Apply(_ context.Context, ops ...Op) error {
	for _, op := range ops {
		if op.Kind != OpSet && op.Kind != OpDelete {
			return fmt.Errorf("unknown op kind: %d", op.Kind)
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, op := range ops {
		switch op.Kind {
		case OpSet:
			s.data[op.Key] = slices.Clone(op.Value)
		case OpDelete:
			delete(s.data, op.Key)
		}
	}
	return nil
}

func (s *MemoryStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}
