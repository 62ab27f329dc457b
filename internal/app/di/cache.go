package di

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"dividend_backend/internal/platform/cache"
	"dividend_backend/internal/platform/config"
	infraredis "dividend_backend/internal/platform/redis"
)

// NewCacheStore creates the Store selected by CACHE_BACKEND.
// If Redis is requested but unreachable, it falls back to the file store.
// The returned client is nil unless Redis is in use; the caller closes it.
func NewCacheStore(ctx context.Context, cfg config.Config) (cache.Store, *redis.Client) {
	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		return cache.NewMemoryStore(), nil
	case config.CacheBackendRedis:
		rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
		if err == nil {
			return cache.NewRedisStore(rdb, 0, "market"), rdb
		}
		slog.Warn("Redis unavailable, falling back to file cache", "dir", cfg.CacheDir(), "error", err)
	}
	return cache.NewFileStore(cfg.CacheDir()), nil
}

// NewMarketCache wraps store with the configured expiry policy.
func NewMarketCache(cfg config.Config, store cache.Store) *cache.MarketCache {
	return cache.NewMarketCache(store, cache.Config{
		PriceExpiry:    cfg.PriceExpiry,
		DividendExpiry: cfg.DividendExpiry,
		Bypass:         cfg.CacheBypass,
	})
}
