package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"assetimport/internal/domain"
)

// MockBulkSubmitter is a mock implementation of port.BulkSubmitter.
type MockBulkSubmitter struct {
	mock.Mock
}

func (m *MockBulkSubmitter) BulkSubmit(ctx context.Context, kind domain.ImportKind, records []map[string]any) (json.RawMessage, error) {
	args := m.Called(ctx, kind, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	switch body := args.Get(0).(type) {
	case string:
		return json.RawMessage(body), args.Error(1)
	default:
		return body.(json.RawMessage), args.Error(1)
	}
}
