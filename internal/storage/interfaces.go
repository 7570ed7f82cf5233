package storage

import (
	"context"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/metrics"
)

// SnapshotStore provides access to pool snapshot timeseries storage.
type SnapshotStore interface {
	// InsertBulk adds multiple snapshots. Fails entire batch on duplicate
	// (pool_id, timestamp_ms).
	InsertBulk(ctx context.Context, snaps []*domain.Snapshot) error

	// GetByPoolID retrieves all snapshots for a pool, ordered by timestamp ASC.
	GetByPoolID(ctx context.Context, poolID string) ([]*domain.Snapshot, error)

	// GetByTimeRange retrieves snapshots for a pool within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, poolID string, start, end int64) ([]*domain.Snapshot, error)

	// ListPoolIDs returns the distinct pool ids present, sorted ASC.
	ListPoolIDs(ctx context.Context) ([]string, error)
}

// TradeResultStore provides access to trade_results storage.
type TradeResultStore interface {
	// Insert adds a new trade result. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.TradeResult) error

	// InsertBulk adds multiple trade results atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.TradeResult) error

	// GetByID retrieves a trade result by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.TradeResult, error)

	// GetByPoolID retrieves all trade results for a pool, ordered by entry time ASC.
	GetByPoolID(ctx context.Context, poolID string) ([]*domain.TradeResult, error)

	// GetAll retrieves all trade results, ordered by entry time ASC, trade id ASC.
	GetAll(ctx context.Context) ([]*domain.TradeResult, error)
}

// SummaryStore provides access to per-strategy run summaries.
type SummaryStore interface {
	// Insert adds a summary for a strategy. Returns ErrDuplicateKey if
	// strategy_id exists.
	Insert(ctx context.Context, strategyID string, s *metrics.Summary) error

	// GetByStrategy retrieves the summary for a strategy. Returns ErrNotFound
	// if not exists.
	GetByStrategy(ctx context.Context, strategyID string) (*metrics.Summary, error)
}
