package reporting

import (
	"time"

	"solana-pool-lab/internal/metrics"
)

// Report is the rendered view of one strategy's backtest run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	StrategyID  string

	// Aggregate over all trades
	Summary metrics.Summary

	// Per-trade rows, sorted by (entry_time_ms, trade_id)
	Trades []TradeRow
}

// TradeRow is one trade in the report tables.
type TradeRow struct {
	TradeID          string
	PoolID           string
	EntryTimeMs      int64
	EntryPrice       float64
	ExitPrice        float64
	ExitReason       string
	ProfitRatio      float64
	ProfitSOL        float64
	MaxProfitRatio   float64
	TradeDurationSec int64
	PeakToExitSec    int64
}
