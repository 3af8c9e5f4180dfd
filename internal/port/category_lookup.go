package port

import (
	"context"

	"assetimport/internal/domain"
)

// CategoryLookup lists the categories that already exist in the inventory.
type CategoryLookup interface {
	ListCategories(ctx context.Context) ([]domain.KnownCategory, error)
}
