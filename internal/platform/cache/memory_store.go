package cache

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is a process-local Store. Entries never expire on their own;
// MarketCache decides freshness.
type MemoryStore struct {
	c *gocache.Cache
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, 0)}
}

func (s *MemoryStore) Read(_ context.Context, key string) ([]byte, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	b := v.([]byte)
	return append([]byte(nil), b...), nil
}

func (s *MemoryStore) Write(_ context.Context, key string, data []byte) error {
	s.c.Set(key, append([]byte(nil), data...), gocache.NoExpiration)
	return nil
}

// Len reports the number of stored entries, fresh or not.
func (s *MemoryStore) Len() int { return s.c.ItemCount() }
