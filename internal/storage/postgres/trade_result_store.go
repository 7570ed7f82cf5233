package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/storage"
)

// TradeResultStore implements storage.TradeResultStore using PostgreSQL.
type TradeResultStore struct {
	pool *Pool
}

// NewTradeResultStore creates a new TradeResultStore.
func NewTradeResultStore(pool *Pool) *TradeResultStore {
	return &TradeResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeResultStore = (*TradeResultStore)(nil)

const tradeResultColumns = `
	trade_id, pool_id,
	entry_price, entry_time_ms, entry_index,
	exit_price, exit_time_ms, exit_index, exit_reason,
	profit_ratio, profit_sol, max_profit_ratio,
	trade_duration_sec, peak_to_exit_sec
`

// Insert adds a new trade result. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeResultStore) Insert(ctx context.Context, t *domain.TradeResult) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trade_results (` + tradeResultColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TradeID, t.PoolID,
		t.EntryPrice, t.EntryTimeMs, t.EntryIndex,
		t.ExitPrice, t.ExitTimeMs, t.ExitIndex, t.ExitReason,
		t.ProfitRatio, t.ProfitSOL, t.MaxProfitRatio,
		t.TradeDurationSec, t.PeakToExitSec,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade result: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trade results atomically inside one transaction.
// Fails entire batch on any duplicate.
func (s *TradeResultStore) InsertBulk(ctx context.Context, trades []*domain.TradeResult) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO trade_results (` + tradeResultColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			t.TradeID, t.PoolID,
			t.EntryPrice, t.EntryTimeMs, t.EntryIndex,
			t.ExitPrice, t.ExitTimeMs, t.ExitIndex, t.ExitReason,
			t.ProfitRatio, t.ProfitSOL, t.MaxProfitRatio,
			t.TradeDurationSec, t.PeakToExitSec,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade result in batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a trade result by its ID. Returns ErrNotFound if not exists.
func (s *TradeResultStore) GetByID(ctx context.Context, tradeID string) (*domain.TradeResult, error) {
	query := `
		SELECT ` + tradeResultColumns + `
		FROM trade_results
		WHERE trade_id = $1
	`

	row := s.pool.QueryRow(ctx, query, tradeID)
	t, err := scanTradeResult(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade result by id: %w", err)
	}
	return t, nil
}

// GetByPoolID retrieves all trade results for a pool, ordered by entry time ASC.
func (s *TradeResultStore) GetByPoolID(ctx context.Context, poolID string) ([]*domain.TradeResult, error) {
	query := `
		SELECT ` + tradeResultColumns + `
		FROM trade_results
		WHERE pool_id = $1
		ORDER BY entry_time_ms ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("get trade results by pool: %w", err)
	}
	defer rows.Close()

	return scanTradeResults(rows)
}

// GetAll retrieves all trade results, ordered by entry time ASC, trade id ASC.
func (s *TradeResultStore) GetAll(ctx context.Context) ([]*domain.TradeResult, error) {
	query := `
		SELECT ` + tradeResultColumns + `
		FROM trade_results
		ORDER BY entry_time_ms ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all trade results: %w", err)
	}
	defer rows.Close()

	return scanTradeResults(rows)
}

// scanTradeResult scans a single row into a TradeResult.
func scanTradeResult(row pgx.Row) (*domain.TradeResult, error) {
	var t domain.TradeResult
	err := row.Scan(
		&t.TradeID, &t.PoolID,
		&t.EntryPrice, &t.EntryTimeMs, &t.EntryIndex,
		&t.ExitPrice, &t.ExitTimeMs, &t.ExitIndex, &t.ExitReason,
		&t.ProfitRatio, &t.ProfitSOL, &t.MaxProfitRatio,
		&t.TradeDurationSec, &t.PeakToExitSec,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// scanTradeResults scans multiple rows into a slice of TradeResult.
func scanTradeResults(rows pgx.Rows) ([]*domain.TradeResult, error) {
	var trades []*domain.TradeResult

	for rows.Next() {
		var t domain.TradeResult
		err := rows.Scan(
			&t.TradeID, &t.PoolID,
			&t.EntryPrice, &t.EntryTimeMs, &t.EntryIndex,
			&t.ExitPrice, &t.ExitTimeMs, &t.ExitIndex, &t.ExitReason,
			&t.ProfitRatio, &t.ProfitSOL, &t.MaxProfitRatio,
			&t.TradeDurationSec, &t.PeakToExitSec,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade result row: %w", err)
		}
		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade result rows: %w", err)
	}

	return trades, nil
}
