package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultRetention bounds how long Redis keeps entries. It is far longer
// than any expiry, so freshness is still decided by MarketCache.
const defaultRetention = 30 * 24 * time.Hour

// RedisStore keeps cache entries in Redis under a namespace.
type RedisStore struct {
	rdb       *redis.Client
	retention time.Duration
	namespace string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore.
// If retention is 0, it defaults to 30 days. If namespace is empty, it uses "market".
func NewRedisStore(rdb *redis.Client, retention time.Duration, namespace string) *RedisStore {
	if retention <= 0 {
		retention = defaultRetention
	}
	if namespace == "" {
		namespace = "market"
	}
	return &RedisStore{rdb: rdb, retention: retention, namespace: namespace}
}

// Read fetches the raw entry for key.
func (s *RedisStore) Read(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Write replaces the entry for key.
func (s *RedisStore) Write(ctx context.Context, key string, data []byte) error {
	return s.rdb.Set(ctx, s.redisKey(key), data, s.retention).Err()
}

// redisKey generates the Redis key for a cache key.
func (s *RedisStore) redisKey(key string) string {
	return fmt.Sprintf("%s:%s", s.namespace, safe(key))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}
