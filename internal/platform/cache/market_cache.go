// Package cache provides the market data cache: a key/value store of fetched
// price and dividend payloads with a per-kind freshness policy.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Kind selects the expiry policy of an entry.
type Kind string

const (
	KindPrice    Kind = "price"
	KindDividend Kind = "dividend"
)

const (
	// DefaultPriceExpiry keeps quotes for a quarter of an hour.
	DefaultPriceExpiry = 15 * time.Minute
	// DefaultDividendExpiry keeps dividend histories for a day.
	DefaultDividendExpiry = 24 * time.Hour
)

// ErrPersistence is returned by Put when the backing store rejects the write.
var ErrPersistence = errors.New("cache write failed")

// Store is the durable backend of a MarketCache.
type Store interface {
	// Read returns ErrNotFound when no record exists for key.
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// ErrNotFound is returned by a Store for an absent key.
var ErrNotFound = errors.New("cache entry not found")

// Config holds the pass-through cache settings.
type Config struct {
	PriceExpiry    time.Duration
	DividendExpiry time.Duration
	// Bypass makes Get always miss while Put keeps persisting.
	Bypass bool
}

// entry is the persisted envelope around a payload.
type entry struct {
	Key      string    `json:"key"`
	Kind     Kind      `json:"kind"`
	StoredAt time.Time `json:"stored_at"`
	Payload  []byte    `json:"payload"`
}

// MarketCache applies the freshness invariant on top of a Store: an entry is
// returned only while now - stored_at < expiry(kind). Stale entries stay in
// the store until overwritten.
type MarketCache struct {
	store  Store
	expiry map[Kind]time.Duration
	bypass bool
	now    func() time.Time
}

// NewMarketCache wraps store. Zero expiries fall back to the defaults.
func NewMarketCache(store Store, cfg Config) *MarketCache {
	if cfg.PriceExpiry <= 0 {
		cfg.PriceExpiry = DefaultPriceExpiry
	}
	if cfg.DividendExpiry <= 0 {
		cfg.DividendExpiry = DefaultDividendExpiry
	}
	return &MarketCache{
		store: store,
		expiry: map[Kind]time.Duration{
			KindPrice:    cfg.PriceExpiry,
			KindDividend: cfg.DividendExpiry,
		},
		bypass: cfg.Bypass,
		now:    time.Now,
	}
}

// WithClock replaces the time source. Meant for tests.
func (c *MarketCache) WithClock(now func() time.Time) *MarketCache {
	c.now = now
	return c
}

// Bypassed reports whether Get is disabled for this instance.
func (c *MarketCache) Bypassed() bool { return c.bypass }

// Expiry returns the freshness window of kind.
func (c *MarketCache) Expiry(kind Kind) time.Duration { return c.expiry[kind] }

// Get returns the payload stored for (kind, key) if it is still fresh.
// Missing, stale, unreadable and corrupted entries all report a miss.
func (c *MarketCache) Get(ctx context.Context, key string, kind Kind) ([]byte, bool) {
	if c.bypass {
		return nil, false
	}
	k := storageKey(kind, key)

	b, err := c.store.Read(ctx, k)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Debug("cache read failed, treating as miss", "key", k, "error", err)
		}
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		slog.Debug("corrupted cache entry, treating as miss", "key", k, "error", err)
		return nil, false
	}
	if e.Kind != kind || e.Key != key || e.StoredAt.IsZero() {
		slog.Debug("cache entry does not match request, treating as miss", "key", k)
		return nil, false
	}
	if c.now().Sub(e.StoredAt) >= c.expiry[kind] {
		slog.Debug("stale cache entry ignored", "key", k, "stored_at", e.StoredAt)
		return nil, false
	}
	return e.Payload, true
}

// Put stores payload for (kind, key), replacing any previous entry.
func (c *MarketCache) Put(ctx context.Context, key string, kind Kind, payload []byte) error {
	k := storageKey(kind, key)
	b, err := json.Marshal(entry{Key: key, Kind: kind, StoredAt: c.now(), Payload: payload})
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrPersistence, k, err)
	}
	if err := c.store.Write(ctx, k, b); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPersistence, k, err)
	}
	return nil
}

// storageKey generates the backend key for an entry.
func storageKey(kind Kind, key string) string {
	return fmt.Sprintf("%s:%s", kind, key)
}
