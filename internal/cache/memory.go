package cache

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	sets    map[string]map[string]struct{}
}

// NewMemory creates an in-process Store with the same JSON and TTL semantics
// as the redis implementation. Used by tests and local development.
func NewMemory() Store {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		sets:    make(map[string]map[string]struct{}),
	}
}

func (s *memoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

func (s *memoryStore) Get(_ context.Context, key string, dest any) error {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if ok && s.expired(entry) {
		delete(s.entries, key)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(entry.data, dest)
}

func (s *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{data: data, expiresAt: expiresAt}
	return nil
}

func (s *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	entry, ok := s.entries[key]
	if ok && s.expired(entry) {
		delete(s.entries, key)
		ok = false
	}
	s.mu.Unlock()

	if ok {
		return false, nil
	}
	return true, s.Set(ctx, key, value, ttl)
}

func (s *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if ok && s.expired(entry) {
		delete(s.entries, key)
		return false, nil
	}
	return ok, nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
		delete(s.sets, k)
	}
	return nil
}

func (s *memoryStore) DelPattern(ctx context.Context, pattern string) (int, error) {
	keys, err := s.Keys(ctx, pattern)
	if err != nil {
		return 0, err
	}
	if err := s.Del(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *memoryStore) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for k, e := range s.entries {
		if s.expired(e) {
			continue
		}
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	for k := range s.sets {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *memoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[key]; ok {
		entry.expiresAt = time.Now().Add(ttl)
		s.entries[key] = entry
	}
	return nil
}

func (s *memoryStore) SAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sets[key] == nil {
		s.sets[key] = make(map[string]struct{})
	}
	for _, m := range members {
		s.sets[key][m] = struct{}{}
	}
	return nil
}

func (s *memoryStore) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make([]string, 0, len(s.sets[key]))
	for m := range s.sets[key] {
		members = append(members, m)
	}
	return members, nil
}
