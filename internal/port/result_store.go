package port

import (
	"context"

	"github.com/google/uuid"

	"assetimport/internal/domain"
)

// ResultStore keeps import results for the lifetime of a review session.
// Get returns domain.ErrResultNotFound for unknown or expired ids. Ping
// reports whether the backing store is reachable.
type ResultStore interface {
	Save(ctx context.Context, result *domain.ImportResult) error
	Get(ctx context.Context, id uuid.UUID) (*domain.ImportResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}
