package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"

	"assetimport/internal/domain"
	"assetimport/internal/port"
)

type memoryStore struct {
	cache *ttlcache.Cache[uuid.UUID, *domain.ImportResult]
}

// NewMemoryStore creates a process-local ResultStore. Entries expire after
// ttl; a zero ttl keeps them until deleted.
func NewMemoryStore(ttl time.Duration) port.ResultStore {
	return newMemoryStore(ttl)
}

func newMemoryStore(ttl time.Duration) *memoryStore {
	cache := ttlcache.New[uuid.UUID, *domain.ImportResult](
		ttlcache.WithTTL[uuid.UUID, *domain.ImportResult](ttl),
		ttlcache.WithDisableTouchOnHit[uuid.UUID, *domain.ImportResult](),
	)
	return &memoryStore{cache: cache}
}

func (s *memoryStore) Save(_ context.Context, result *domain.ImportResult) error {
	// No janitor goroutine; expired sessions are dropped on write.
	s.cache.DeleteExpired()
	s.cache.Set(result.ID, result, ttlcache.DefaultTTL)
	return nil
}

func (s *memoryStore) Get(_ context.Context, id uuid.UUID) (*domain.ImportResult, error) {
	item := s.cache.Get(id)
	if item == nil {
		return nil, domain.ErrResultNotFound
	}
	return item.Value(), nil
}

func (s *memoryStore) Delete(_ context.Context, id uuid.UUID) error {
	if s.cache.Get(id) == nil {
		return domain.ErrResultNotFound
	}
	s.cache.Delete(id)
	return nil
}

func (s *memoryStore) Ping(context.Context) error {
	return nil
}
