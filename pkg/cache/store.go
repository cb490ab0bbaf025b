package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

const (
	// scanBatchSize bounds how many keys a single SCAN iteration may visit,
	// so pattern deletion never blocks the store for an unbounded time.
	scanBatchSize = 100
)

// Store handles response caching operations with Redis backend.
type Store struct {
	redis *redis.Client
}

// NewStore creates a new cache store with Redis backend.
func NewStore(redisClient *redis.Client) *Store {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Store{
		redis: redisClient,
	}
}

// Get retrieves a cached value by key.
// Returns ErrCacheMiss if the key doesn't exist or has expired.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	CacheHits.WithLabelValues("redis").Inc()
	return data, nil
}

// Set stores a value under key with the given TTL.
// A non-positive TTL skips the write (an already-expired entry is never stored).
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheSize.WithLabelValues("redis").Add(float64(len(value)))
	return nil
}

// Delete removes a single cache entry.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// DeleteMatching removes every key matching the glob-style pattern and
// returns how many keys were removed. Zero matches is a success.
//
// Keys are discovered with cursor-based SCAN in batches of scanBatchSize
// rather than a single blocking KEYS enumeration, so large key spaces do
// not stall concurrent cache operations.
func (s *Store) DeleteMatching(ctx context.Context, pattern string) (int, error) {
	if pattern == "" {
		return 0, fmt.Errorf("empty pattern")
	}

	var removed int
	var cursor uint64

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			CacheErrors.WithLabelValues("delete_matching").Inc()
			return removed, fmt.Errorf("redis scan %q: %w", pattern, err)
		}

		if len(keys) > 0 {
			n, err := s.redis.Del(ctx, keys...).Result()
			if err != nil {
				CacheErrors.WithLabelValues("delete_matching").Inc()
				return removed, fmt.Errorf("redis del %q batch: %w", pattern, err)
			}
			removed += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	InvalidatedKeys.Add(float64(removed))
	return removed, nil
}
