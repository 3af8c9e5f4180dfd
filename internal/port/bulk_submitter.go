package port

import (
	"context"
	"encoding/json"

	"assetimport/internal/domain"
)

// BulkSubmitter sends one batch of records to the inventory bulk endpoint
// for the given import kind and returns the raw response body.
type BulkSubmitter interface {
	BulkSubmit(ctx context.Context, kind domain.ImportKind, records []map[string]any) (json.RawMessage, error)
}
