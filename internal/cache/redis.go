package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis creates a Store backed by a redis client. All keys are namespaced
// with the configured prefix.
func NewRedis(cfg Config) Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &redisStore{rdb: rdb, prefix: cfg.Prefix}
}

func (s *redisStore) key(k string) string {
	return s.prefix + k
}

func (s *redisStore) Get(ctx context.Context, key string, dest any) error {
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	return json.Unmarshal(b, dest)
}

func (s *redisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return s.rdb.Set(ctx, s.key(key), data, ttl).Err()
}

func (s *redisStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("cache setnx %s: %w", key, err)
	}
	return s.rdb.SetNX(ctx, s.key(key), data, ttl).Result()
}

func (s *redisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(key)).Result()
	return n > 0, err
}

func (s *redisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.key(k)
	}
	return s.rdb.Del(ctx, prefixed...).Err()
}

func (s *redisStore) DelPattern(ctx context.Context, pattern string) (int, error) {
	var deleted int
	iter := s.rdb.Scan(ctx, 0, s.key(pattern), 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("cache del pattern %s: %w", pattern, err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("cache scan %s: %w", pattern, err)
	}
	return deleted, nil
}

func (s *redisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.key(pattern), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(s.prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("cache scan %s: %w", pattern, err)
	}
	return keys, nil
}

func (s *redisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Expire(ctx, s.key(key), ttl).Err()
}

func (s *redisStore) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]any, len(members))
	for i, m := range members {
		args[i] = m
	}
	return s.rdb.SAdd(ctx, s.key(key), args...).Err()
}

func (s *redisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	return s.rdb.SMembers(ctx, s.key(key)).Result()
}
