package backtest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/metrics"
	"solana-pool-lab/internal/observability"
	"solana-pool-lab/internal/signal"
	"solana-pool-lab/internal/storage"
)

// Runner replays stored pool histories through the entry detector and the
// exit simulator, persisting one trade result per matched pool.
type Runner struct {
	snapshots storage.SnapshotStore
	trades    storage.TradeResultStore
	summaries storage.SummaryStore
	buyCfg    domain.BuyConfig
	sellCfg   domain.SellConfig
	workers   int
	logger    *log.Logger
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Snapshots  storage.SnapshotStore
	Trades     storage.TradeResultStore // optional; results are not persisted when nil
	Summaries  storage.SummaryStore     // optional; the aggregate is not persisted when nil
	BuyConfig  domain.BuyConfig
	SellConfig domain.SellConfig
	Workers    int                      // Default: 4
	Logger     *log.Logger
}

// NewRunner creates a new backtest runner.
func NewRunner(opts RunnerOptions) *Runner {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		snapshots: opts.Snapshots,
		trades:    opts.Trades,
		summaries: opts.Summaries,
		buyCfg:    opts.BuyConfig,
		sellCfg:   opts.SellConfig,
		workers:   workers,
		logger:    logger,
	}
}

// RunPool backtests a single pool. A pool whose history never matches the
// entry pattern yields (nil, nil); that is an ordinary outcome, not an error.
func (r *Runner) RunPool(ctx context.Context, poolID string) (*domain.TradeResult, error) {
	snaps, err := r.snapshots.GetByPoolID(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("load snapshots for pool %s: %w", poolID, err)
	}
	if len(snaps) == 0 {
		return nil, nil
	}

	opp, err := signal.FindOpportunity(snaps, r.buyCfg)
	if err != nil {
		return nil, fmt.Errorf("detect entry for pool %s: %w", poolID, err)
	}
	if opp == nil {
		return nil, nil
	}

	result, err := signal.SimulateExit(opp, r.sellCfg)
	if err != nil {
		return nil, fmt.Errorf("simulate exit for pool %s: %w", poolID, err)
	}

	if r.trades != nil {
		err := r.trades.Insert(ctx, result)
		// The trade id is deterministic, so a re-run over the same data
		// hits the same row. Keep going with the freshly computed result.
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("persist trade %s: %w", result.TradeID, err)
		}
	}

	return result, nil
}

// RunAll backtests every pool in the snapshot store using a worker pool and
// aggregates the resulting trades into a summary.
func (r *Runner) RunAll(ctx context.Context) (*metrics.Summary, []*domain.TradeResult, error) {
	poolIDs, err := r.snapshots.ListPoolIDs(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list pools: %w", err)
	}

	jobs := make(chan string)
	results := make(chan *domain.TradeResult)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for poolID := range jobs {
				observability.RecordPoolScanned()
				result, err := r.RunPool(ctx, poolID)
				if err != nil {
					observability.RecordBacktestError()
					r.logger.Printf("pool %s: %v", poolID, err)
					continue
				}
				if result != nil {
					observability.RecordTradeSimulated()
					results <- result
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, poolID := range poolIDs {
			select {
			case jobs <- poolID:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	acc := metrics.NewAccumulator()
	for result := range results {
		acc.Add(result)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	summary := acc.Summary()
	if r.summaries != nil {
		if err := r.summaries.Insert(ctx, r.sellCfg.ID(), summary); err != nil &&
			!errors.Is(err, storage.ErrDuplicateKey) {
			return nil, nil, fmt.Errorf("persist summary: %w", err)
		}
	}

	r.logger.Printf("backtest done: pools=%d trades=%d", len(poolIDs), acc.Count())
	return summary, acc.Results(), nil
}
