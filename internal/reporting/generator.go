package reporting

import (
	"context"
	"errors"
	"time"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/metrics"
	"solana-pool-lab/internal/storage"
)

// Generator produces reports from stored trade results.
type Generator struct {
	tradeStore   storage.TradeResultStore
	summaryStore storage.SummaryStore // optional; the aggregate is recomputed when nil
	now          func() time.Time     // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(tradeStore storage.TradeResultStore, summaryStore storage.SummaryStore) *Generator {
	return &Generator{
		tradeStore:   tradeStore,
		summaryStore: summaryStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the report for a strategy. The stored aggregate is used
// when present; otherwise it is recomputed from the trades.
func (g *Generator) Generate(ctx context.Context, strategyID string) (*Report, error) {
	trades, err := g.tradeStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := g.loadSummary(ctx, strategyID, trades)
	if err != nil {
		return nil, err
	}

	rows := make([]TradeRow, len(trades))
	for i, t := range trades {
		rows[i] = TradeRow{
			TradeID:          t.TradeID,
			PoolID:           t.PoolID,
			EntryTimeMs:      t.EntryTimeMs,
			EntryPrice:       t.EntryPrice,
			ExitPrice:        t.ExitPrice,
			ExitReason:       t.ExitReason,
			ProfitRatio:      t.ProfitRatio,
			ProfitSOL:        t.ProfitSOL,
			MaxProfitRatio:   t.MaxProfitRatio,
			TradeDurationSec: t.TradeDurationSec,
			PeakToExitSec:    t.PeakToExitSec,
		}
	}

	return &Report{
		GeneratedAt: g.now(),
		StrategyID:  strategyID,
		Summary:     *summary,
		Trades:      rows,
	}, nil
}

func (g *Generator) loadSummary(ctx context.Context, strategyID string, trades []*domain.TradeResult) (*metrics.Summary, error) {
	if g.summaryStore != nil {
		summary, err := g.summaryStore.GetByStrategy(ctx, strategyID)
		if err == nil {
			return summary, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}
	return metrics.Summarize(trades), nil
}
