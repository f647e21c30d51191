package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Store is a string key/value store with first-writer-wins semantics.
type Store interface {
	// Get returns the value and true on a hit.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetNX stores value unless the key exists and returns the value that is
	// stored after the call.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (string, error)
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	entries *gocache.Cache
}

// NewMemoryStore returns a MemoryStore whose expired entries are purged every cleanup interval.
func NewMemoryStore(defaultTTL, cleanup time.Duration) *MemoryStore {
	return &MemoryStore{entries: gocache.New(defaultTTL, cleanup)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, found := s.entries.Get(key)
	if !found {
		return "", false, nil
	}
	value, ok := v.(string)
	return value, ok, nil
}

// SetNX implements Store.
func (s *MemoryStore) SetNX(_ context.Context, key, value string, ttl time.Duration) (string, error) {
	if err := s.entries.Add(key, value, ttl); err == nil {
		return value, nil
	}
	if existing, found := s.entries.Get(key); found {
		if v, ok := existing.(string); ok {
			return v, nil
		}
	}
	// Expired between Add and Get; overwrite.
	s.entries.Set(key, value, ttl)
	return value, nil
}

// Len reports the number of stored entries, including expired ones not yet purged.
func (s *MemoryStore) Len() int { return s.entries.ItemCount() }

// RedisStore keeps entries in Redis under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// DialRedis parses a redis:// URL, applies password and db overrides and pings the server.
func DialRedis(ctx context.Context, url, password string, db int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	if db > 0 {
		opts.DB = db
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return value, true, nil
}

// SetNX implements Store.
func (s *RedisStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (string, error) {
	created, err := s.client.SetNX(ctx, s.prefix+key, value, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis setnx: %w", err)
	}
	if created {
		return value, nil
	}
	existing, found, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !found {
		return value, nil
	}
	return existing, nil
}
