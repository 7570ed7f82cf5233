package memory

import (
	"context"
	"sort"
	"sync"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.Snapshot // keyed by pool_id, sorted by timestamp
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		data: make(map[string][]*domain.Snapshot),
	}
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate
// (pool_id, timestamp_ms).
func (s *SnapshotStore) InsertBulk(_ context.Context, snaps []*domain.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		poolID string
		tsMs   int64
	}
	batchKeys := make(map[key]struct{}, len(snaps))

	for _, snap := range snaps {
		if snap == nil || snap.PoolID == "" {
			return storage.ErrInvalidInput
		}
		k := key{snap.PoolID, snap.TimestampMs}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}

		for _, existing := range s.data[snap.PoolID] {
			if existing.TimestampMs == snap.TimestampMs {
				return storage.ErrDuplicateKey
			}
		}
	}

	for _, snap := range snaps {
		copied := *snap
		s.data[snap.PoolID] = append(s.data[snap.PoolID], &copied)
	}
	for _, snap := range snaps {
		seq := s.data[snap.PoolID]
		sort.SliceStable(seq, func(i, j int) bool {
			return seq[i].TimestampMs < seq[j].TimestampMs
		})
	}

	return nil
}

// GetByPoolID retrieves all snapshots for a pool, ordered by timestamp ASC.
func (s *SnapshotStore) GetByPoolID(_ context.Context, poolID string) ([]*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.data[poolID]
	result := make([]*domain.Snapshot, 0, len(seq))
	for _, snap := range seq {
		copied := *snap
		result = append(result, &copied)
	}
	return result, nil
}

// GetByTimeRange retrieves snapshots for a pool within [start, end] (inclusive).
func (s *SnapshotStore) GetByTimeRange(_ context.Context, poolID string, start, end int64) ([]*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Snapshot
	for _, snap := range s.data[poolID] {
		if snap.TimestampMs >= start && snap.TimestampMs <= end {
			copied := *snap
			result = append(result, &copied)
		}
	}
	return result, nil
}

// ListPoolIDs returns the distinct pool ids present, sorted ASC.
func (s *SnapshotStore) ListPoolIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
