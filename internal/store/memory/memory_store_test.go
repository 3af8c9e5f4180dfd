package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetimport/internal/domain"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	result := &domain.ImportResult{ID: uuid.New(), Kind: domain.ImportKindAssets}

	require.NoError(t, store.Save(ctx, result))

	got, err := store.Get(ctx, result.ID)
	require.NoError(t, err)
	assert.Same(t, result, got)

	require.NoError(t, store.Delete(ctx, result.ID))
	_, err = store.Get(ctx, result.ID)
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
	assert.ErrorIs(t, store.Delete(ctx, result.ID), domain.ErrResultNotFound)
	assert.NoError(t, store.Ping(ctx))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(50 * time.Millisecond)

	old := &domain.ImportResult{ID: uuid.New()}
	require.NoError(t, store.Save(ctx, old))
	_, err := store.Get(ctx, old.ID)
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)
	_, err = store.Get(ctx, old.ID)
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
	assert.ErrorIs(t, store.Delete(ctx, old.ID), domain.ErrResultNotFound)

	fresh := &domain.ImportResult{ID: uuid.New()}
	require.NoError(t, store.Save(ctx, fresh))
	assert.Equal(t, 1, store.cache.Len())
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(0)
	result := &domain.ImportResult{ID: uuid.New()}
	require.NoError(t, store.Save(ctx, result))

	time.Sleep(20 * time.Millisecond)
	_, err := store.Get(ctx, result.ID)
	assert.NoError(t, err)
}
