package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"assetimport/internal/domain"
)

// MockCategoryLookup is a mock implementation of port.CategoryLookup.
type MockCategoryLookup struct {
	mock.Mock
}

func (m *MockCategoryLookup) ListCategories(ctx context.Context) ([]domain.KnownCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnownCategory), args.Error(1)
}
