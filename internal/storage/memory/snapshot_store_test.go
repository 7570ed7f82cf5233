package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/storage"
)

func snap(poolID string, tsMs int64, mc float64) *domain.Snapshot {
	return &domain.Snapshot{
		PoolID:      poolID,
		TimestampMs: tsMs,
		MarketCap:   mc,
	}
}

func TestSnapshotStore_InsertBulkAndGetByPoolID(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.Snapshot{
		snap("pool-1", 3000, 12000),
		snap("pool-1", 1000, 10000),
		snap("pool-1", 2000, 11000),
	})
	require.NoError(t, err)

	got, err := store.GetByPoolID(ctx, "pool-1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by timestamp regardless of insertion order.
	assert.Equal(t, int64(1000), got[0].TimestampMs)
	assert.Equal(t, int64(2000), got[1].TimestampMs)
	assert.Equal(t, int64(3000), got[2].TimestampMs)
}

func TestSnapshotStore_DuplicateKey(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Snapshot{snap("pool-1", 1000, 10000)}))

	// Against existing rows.
	err := store.InsertBulk(ctx, []*domain.Snapshot{snap("pool-1", 1000, 99999)})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Intra-batch.
	err = store.InsertBulk(ctx, []*domain.Snapshot{
		snap("pool-2", 1000, 1),
		snap("pool-2", 1000, 2),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Failed batches leave nothing behind.
	got, err := store.GetByPoolID(ctx, "pool-2")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSnapshotStore_SamePoolDifferentTimestamps(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	// Same timestamp on different pools is not a duplicate.
	err := store.InsertBulk(ctx, []*domain.Snapshot{
		snap("pool-1", 1000, 1),
		snap("pool-2", 1000, 2),
	})
	require.NoError(t, err)
}

func TestSnapshotStore_GetByTimeRange(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Snapshot{
		snap("pool-1", 1000, 1),
		snap("pool-1", 2000, 2),
		snap("pool-1", 3000, 3),
	}))

	got, err := store.GetByTimeRange(ctx, "pool-1", 1000, 2000)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1000), got[0].TimestampMs)
	assert.Equal(t, int64(2000), got[1].TimestampMs)
}

func TestSnapshotStore_ListPoolIDs(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Snapshot{
		snap("pool-b", 1000, 1),
		snap("pool-a", 1000, 1),
	}))

	ids, err := store.ListPoolIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pool-a", "pool-b"}, ids)
}

func TestSnapshotStore_ReturnsCopies(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.Snapshot{snap("pool-1", 1000, 10000)}))

	got, err := store.GetByPoolID(ctx, "pool-1")
	require.NoError(t, err)
	got[0].MarketCap = 0

	again, err := store.GetByPoolID(ctx, "pool-1")
	require.NoError(t, err)
	assert.Equal(t, 10000.0, again[0].MarketCap)
}
