package memory

import (
	"context"
	"sort"
	"sync"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/storage"
)

// TradeResultStore is an in-memory implementation of storage.TradeResultStore.
type TradeResultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeResult // keyed by trade_id
}

// NewTradeResultStore creates a new in-memory trade result store.
func NewTradeResultStore() *TradeResultStore {
	return &TradeResultStore{
		data: make(map[string]*domain.TradeResult),
	}
}

var _ storage.TradeResultStore = (*TradeResultStore)(nil)

// Insert adds a new trade result. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeResultStore) Insert(_ context.Context, t *domain.TradeResult) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TradeID]; exists {
		return storage.ErrDuplicateKey
	}

	copied := *t
	s.data[t.TradeID] = &copied
	return nil
}

// InsertBulk adds multiple trade results atomically. Fails entire batch on
// any duplicate.
func (s *TradeResultStore) InsertBulk(_ context.Context, trades []*domain.TradeResult) error {
	if len(trades) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[t.TradeID] = struct{}{}
	}

	for _, t := range trades {
		copied := *t
		s.data[t.TradeID] = &copied
	}
	return nil
}

// GetByID retrieves a trade result by its ID. Returns ErrNotFound if not exists.
func (s *TradeResultStore) GetByID(_ context.Context, tradeID string) (*domain.TradeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[tradeID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copied := *t
	return &copied, nil
}

// GetByPoolID retrieves all trade results for a pool, ordered by entry time ASC.
func (s *TradeResultStore) GetByPoolID(_ context.Context, poolID string) ([]*domain.TradeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeResult
	for _, t := range s.data {
		if t.PoolID == poolID {
			copied := *t
			result = append(result, &copied)
		}
	}
	sortTradeResults(result)
	return result, nil
}

// GetAll retrieves all trade results, ordered by entry time ASC, trade id ASC.
func (s *TradeResultStore) GetAll(_ context.Context) ([]*domain.TradeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.TradeResult, 0, len(s.data))
	for _, t := range s.data {
		copied := *t
		result = append(result, &copied)
	}
	sortTradeResults(result)
	return result, nil
}

func sortTradeResults(trades []*domain.TradeResult) {
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].EntryTimeMs != trades[j].EntryTimeMs {
			return trades[i].EntryTimeMs < trades[j].EntryTimeMs
		}
		return trades[i].TradeID < trades[j].TradeID
	})
}
