package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ledgerview/internal/cache"
	"ledgerview/internal/core"
)

// MemoryStore keeps snapshots in an in-process LRU cache.
type MemoryStore struct {
	lru *cache.LRUCache[core.Tables]
}

func NewMemoryStore(lru *cache.LRUCache[core.Tables]) *MemoryStore {
	return &MemoryStore{lru: lru}
}

func (s *MemoryStore) Get(_ context.Context, key string) (core.Tables, bool, error) {
	t, ok := s.lru.Get(key)
	return t, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, t core.Tables, ttl time.Duration) error {
	s.lru.SetWithTTL(key, t, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.lru.Delete(key)
	return nil
}

// RedisStore keeps snapshots as JSON under namespace:key so several
// dashboard replicas share one load.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
}

func NewRedisStore(client redis.UniversalClient, namespace string) *RedisStore {
	if namespace == "" {
		namespace = "ledgerview"
	}
	return &RedisStore{client: client, namespace: namespace}
}

// NewRedisClient connects to a single Redis node.
func NewRedisClient(addr, password string) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

func (s *RedisStore) key(k string) string {
	return s.namespace + ":snapshot:" + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (core.Tables, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.Tables{}, false, nil
	}
	if err != nil {
		return core.Tables{}, false, fmt.Errorf("redis get: %w", err)
	}
	t, err := decode(raw)
	if err != nil {
		return core.Tables{}, false, err
	}
	return t, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, t core.Tables, ttl time.Duration) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.client.Set(ctx, s.key(key), raw, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Ping checks the Redis connection, for readiness probes.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func decode(raw []byte) (core.Tables, error) {
	var t core.Tables
	if err := json.Unmarshal(raw, &t); err != nil {
		return core.Tables{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return t, nil
}
