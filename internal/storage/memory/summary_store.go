package memory

import (
	"context"
	"sync"

	"solana-pool-lab/internal/metrics"
	"solana-pool-lab/internal/storage"
)

// SummaryStore is an in-memory implementation of storage.SummaryStore.
type SummaryStore struct {
	mu   sync.RWMutex
	data map[string]*metrics.Summary // keyed by strategy_id
}

// NewSummaryStore creates a new in-memory summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{
		data: make(map[string]*metrics.Summary),
	}
}

var _ storage.SummaryStore = (*SummaryStore)(nil)

// Insert adds a summary for a strategy. Returns ErrDuplicateKey if
// strategy_id exists.
func (s *SummaryStore) Insert(_ context.Context, strategyID string, sum *metrics.Summary) error {
	if strategyID == "" || sum == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[strategyID]; exists {
		return storage.ErrDuplicateKey
	}

	copied := *sum
	copied.ExitReasons = make(map[string]int, len(sum.ExitReasons))
	for k, v := range sum.ExitReasons {
		copied.ExitReasons[k] = v
	}
	s.data[strategyID] = &copied
	return nil
}

// GetByStrategy retrieves the summary for a strategy. Returns ErrNotFound if
// not exists.
func (s *SummaryStore) GetByStrategy(_ context.Context, strategyID string) (*metrics.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, exists := s.data[strategyID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copied := *sum
	copied.ExitReasons = make(map[string]int, len(sum.ExitReasons))
	for k, v := range sum.ExitReasons {
		copied.ExitReasons[k] = v
	}
	return &copied, nil
}
