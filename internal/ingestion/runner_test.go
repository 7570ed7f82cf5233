package ingestion

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/solana"
	"solana-pool-lab/internal/storage/memory"
)

// stubSource replays a fixed slice of records and closes the channel.
type stubSource struct {
	records []RawRecord
}

func (s *stubSource) Subscribe(_ context.Context) (<-chan RawRecord, error) {
	out := make(chan RawRecord, len(s.records))
	for _, r := range s.records {
		out <- r
	}
	close(out)
	return out, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func rawSnap(poolID string, tsMs int64, marketCap float64) RawRecord {
	return RawRecord{
		"poolAddress": poolID,
		"timestamp":   float64(tsMs),
		"marketCap":   marketCap,
	}
}

func TestRunner_IngestsAndFlushes(t *testing.T) {
	store := memory.NewSnapshotStore()
	source := &stubSource{records: []RawRecord{
		rawSnap(solana.WSOLMint, 1000, 50000),
		rawSnap(solana.WSOLMint, 2000, 52000),
		rawSnap("11111111111111111111111111111111", 1000, 9000),
	}}

	runner := NewRunner(RunnerOptions{
		Source: source,
		Store:  store,
		Logger: quietLogger(),
	})
	require.NoError(t, runner.Run(context.Background()))

	snaps, err := store.GetByPoolID(context.Background(), solana.WSOLMint)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(1000), snaps[0].TimestampMs)
	assert.Equal(t, 52000.0, snaps[1].MarketCap)

	other, err := store.GetByPoolID(context.Background(), "11111111111111111111111111111111")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	assert.Equal(t, 3, runner.accepted)
	assert.Equal(t, 0, runner.rejected)
}

func TestRunner_SkipsInvalidRecords(t *testing.T) {
	store := memory.NewSnapshotStore()
	source := &stubSource{records: []RawRecord{
		rawSnap(solana.WSOLMint, 1000, 50000),
		{"timestamp": float64(2000), "marketCap": 51000.0}, // no pool id
		rawSnap("not-base58-0OIl", 3000, 52000),            // bad address
	}}

	runner := NewRunner(RunnerOptions{
		Source: source,
		Store:  store,
		Logger: quietLogger(),
	})
	require.NoError(t, runner.Run(context.Background()))

	snaps, err := store.GetByPoolID(context.Background(), solana.WSOLMint)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)

	assert.Equal(t, 1, runner.accepted)
	assert.Equal(t, 2, runner.rejected)
}

func TestRunner_ToleratesDuplicates(t *testing.T) {
	store := memory.NewSnapshotStore()
	source := &stubSource{records: []RawRecord{
		rawSnap(solana.WSOLMint, 1000, 50000),
		rawSnap(solana.WSOLMint, 1000, 50000),
	}}

	runner := NewRunner(RunnerOptions{
		Source: source,
		Store:  store,
		Logger: quietLogger(),
	})
	require.NoError(t, runner.Run(context.Background()))

	// Both records landed in the same batch, which the store rejects whole.
	assert.Equal(t, 2, runner.duplicates)
	assert.Equal(t, 0, runner.accepted)
}

// flakyStore fails a set number of InsertBulk calls before delegating.
type flakyStore struct {
	*memory.SnapshotStore
	failures int
	calls    int
}

func (s *flakyStore) InsertBulk(ctx context.Context, snaps []*domain.Snapshot) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("connection reset")
	}
	return s.SnapshotStore.InsertBulk(ctx, snaps)
}

func TestRunner_RetainsBatchOnStoreError(t *testing.T) {
	store := &flakyStore{SnapshotStore: memory.NewSnapshotStore(), failures: 1}
	runner := NewRunner(RunnerOptions{
		Source: &stubSource{},
		Store:  store,
		Logger: quietLogger(),
	})

	ctx := context.Background()
	runner.ingest(ctx, rawSnap(solana.WSOLMint, 1000, 50000))
	runner.ingest(ctx, rawSnap(solana.WSOLMint, 2000, 51000))

	// The first flush hits the store error; the batch stays buffered.
	runner.flush(ctx)
	assert.Equal(t, 0, runner.accepted)
	assert.Equal(t, 2, runner.buffered)

	snaps, err := store.GetByPoolID(ctx, solana.WSOLMint)
	require.NoError(t, err)
	assert.Empty(t, snaps)

	// The next flush retries the retained batch and lands it.
	runner.flush(ctx)
	assert.Equal(t, 2, runner.accepted)
	assert.Equal(t, 0, runner.buffered)

	snaps, err = store.GetByPoolID(ctx, solana.WSOLMint)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}

func TestRunner_FlushesOnBatchSize(t *testing.T) {
	store := memory.NewSnapshotStore()
	source := &stubSource{records: []RawRecord{
		rawSnap(solana.WSOLMint, 1000, 50000),
		rawSnap(solana.WSOLMint, 2000, 51000),
		rawSnap(solana.WSOLMint, 3000, 52000),
	}}

	runner := NewRunner(RunnerOptions{
		Source:    source,
		Store:     store,
		BatchSize: 2,
		Logger:    quietLogger(),
	})
	require.NoError(t, runner.Run(context.Background()))

	snaps, err := store.GetByPoolID(context.Background(), solana.WSOLMint)
	require.NoError(t, err)
	assert.Len(t, snaps, 3)
	assert.Equal(t, 3, runner.accepted)
}

func TestRunner_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A source that never produces; Run must still return promptly.
	blocked := make(chan RawRecord)
	source := &funcSource{subscribe: func(context.Context) (<-chan RawRecord, error) {
		return blocked, nil
	}}

	runner := NewRunner(RunnerOptions{
		Source: source,
		Store:  memory.NewSnapshotStore(),
		Logger: quietLogger(),
	})

	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop on context cancellation")
	}
}

type funcSource struct {
	subscribe func(context.Context) (<-chan RawRecord, error)
}

func (s *funcSource) Subscribe(ctx context.Context) (<-chan RawRecord, error) {
	return s.subscribe(ctx)
}
