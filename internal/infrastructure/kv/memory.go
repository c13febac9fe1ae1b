package kv

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used by tests and local tooling.
// The mutex gives Update the same all-or-nothing behavior the Redis
// implementation gets from WATCH.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = b
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	_, ok := s.data[key]
	delete(s.data, key)
	s.mu.Unlock()
	return ok, nil
}

func (s *MemoryStore) GetByPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	s.mu.RLock()
	keys := make([]string, 0)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		out = append(out, append([]byte(nil), s.data[k]...))
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *MemoryStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	s.mu.RLock()
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if raw, ok := s.data[k]; ok {
			out[i] = append([]byte(nil), raw...)
		}
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, key string, fn func(cur []byte) (any, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.data[key]
	next, err := fn(cur)
	if err != nil {
		return err
	}
	b, err := json.Marshal(next)
	if err != nil {
		return err
	}
	s.data[key] = b
	return nil
}

var _ Store = (*MemoryStore)(nil)
