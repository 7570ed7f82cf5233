package postgres

import (
	"context"
	"fmt"

	"solana-pool-lab/internal/metrics"
	"solana-pool-lab/internal/storage"
)

// SummaryStore implements storage.SummaryStore using PostgreSQL. The
// exit-reason histogram is stored as JSONB; everything else is flat columns.
type SummaryStore struct {
	pool *Pool
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(pool *Pool) *SummaryStore {
	return &SummaryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

// Insert adds a summary for a strategy. Returns ErrDuplicateKey if
// strategy_id exists.
func (s *SummaryStore) Insert(ctx context.Context, strategyID string, sum *metrics.Summary) error {
	if strategyID == "" || sum == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO strategy_summaries (
			strategy_id, total_trades, wins, losses, win_rate,
			mean_profit_ratio, median_profit_ratio, max_profit_ratio,
			profit_ratio_stddev, profit_ratio_p10, profit_ratio_p90,
			total_profit_sol, mean_duration_sec,
			max_drawdown, max_consecutive_losses, exit_reasons
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := s.pool.Exec(ctx, query,
		strategyID, sum.TotalTrades, sum.Wins, sum.Losses, sum.WinRate,
		sum.MeanProfitRatio, sum.MedianProfitRatio, sum.MaxProfitRatio,
		sum.ProfitRatioStddev, sum.ProfitRatioP10, sum.ProfitRatioP90,
		sum.TotalProfitSOL, sum.MeanDurationSec,
		sum.MaxDrawdown, sum.MaxConsecutiveLosses, sum.ExitReasons,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert strategy summary: %w", err)
	}
	return nil
}

// GetByStrategy retrieves the summary for a strategy. Returns ErrNotFound if
// not exists.
func (s *SummaryStore) GetByStrategy(ctx context.Context, strategyID string) (*metrics.Summary, error) {
	query := `
		SELECT total_trades, wins, losses, win_rate,
			mean_profit_ratio, median_profit_ratio, max_profit_ratio,
			profit_ratio_stddev, profit_ratio_p10, profit_ratio_p90,
			total_profit_sol, mean_duration_sec,
			max_drawdown, max_consecutive_losses, exit_reasons
		FROM strategy_summaries
		WHERE strategy_id = $1
	`

	var sum metrics.Summary
	err := s.pool.QueryRow(ctx, query, strategyID).Scan(
		&sum.TotalTrades, &sum.Wins, &sum.Losses, &sum.WinRate,
		&sum.MeanProfitRatio, &sum.MedianProfitRatio, &sum.MaxProfitRatio,
		&sum.ProfitRatioStddev, &sum.ProfitRatioP10, &sum.ProfitRatioP90,
		&sum.TotalProfitSOL, &sum.MeanDurationSec,
		&sum.MaxDrawdown, &sum.MaxConsecutiveLosses, &sum.ExitReasons,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get strategy summary: %w", err)
	}
	return &sum, nil
}
