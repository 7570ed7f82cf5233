package backtest

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/storage/memory"
)

const testBaseMs = int64(1700000000000)

func testBuyConfig() domain.BuyConfig {
	return domain.BuyConfig{
		EarlyMarketCapLimit: 400000,
		MinDelaySec:         10,
		MaxDelaySec:         30,
		MinSnapshots:        3,
		Thresholds: domain.BuyThresholds{
			PriceChange:              1.0,
			MarketCapChange5s:        5.0,
			MarketCapChange30s:       10.0,
			HolderDelta30s:           20,
			BuyVolume5s:              5.0,
			NetVolume5s:              0.0,
			BuySellRatio10s:          1.5,
			MarketCapGrowthFromStart: 10.0,
			HolderGrowthFromStart:    20,
			LargeBuy5s:               0,
		},
	}
}

func snap(poolID string, offsetSec int64, mc float64, holders int64) *domain.Snapshot {
	return &domain.Snapshot{
		PoolID:       poolID,
		TimestampMs:  testBaseMs + offsetSec*1000,
		MarketCap:    mc,
		Price:        mc / 1e9,
		HoldersCount: holders,
	}
}

func hot(poolID string, offsetSec int64) *domain.Snapshot {
	s := snap(poolID, offsetSec, 25000, 60)
	s.PriceChangePercent = domain.Float64Ptr(2.0)
	s.MarketCapChange5s = domain.Float64Ptr(12.0)
	s.MarketCapChange30s = domain.Float64Ptr(25.0)
	s.HolderDelta30s = domain.Int64Ptr(30)
	s.BuyVolume5s = domain.Float64Ptr(10.0)
	s.NetVolume5s = domain.Float64Ptr(5.0)
	s.BuyVolume10s = domain.Float64Ptr(20.0)
	s.NetVolume10s = domain.Float64Ptr(15.0)
	s.LargeBuy5s = domain.Int64Ptr(2)
	return s
}

// matchingPool produces a history with one valid entry at index 3 whose
// post-entry data runs out without hitting any exit rule.
func matchingPool(poolID string) []*domain.Snapshot {
	return []*domain.Snapshot{
		snap(poolID, 0, 10000, 10),
		hot(poolID, 5),
		snap(poolID, 10, 26000, 62),
		snap(poolID, 15, 27000, 65),
		snap(poolID, 20, 28000, 70),
		snap(poolID, 25, 26500, 71),
	}
}

func quietPool(poolID string) []*domain.Snapshot {
	return []*domain.Snapshot{
		snap(poolID, 0, 10000, 10),
		snap(poolID, 5, 11000, 12),
		snap(poolID, 10, 12000, 15),
		snap(poolID, 15, 11500, 16),
	}
}

func testRunner(t *testing.T, pools ...[]*domain.Snapshot) (*Runner, *memory.TradeResultStore, *memory.SummaryStore) {
	t.Helper()

	snapshots := memory.NewSnapshotStore()
	for _, pool := range pools {
		require.NoError(t, snapshots.InsertBulk(context.Background(), pool))
	}

	trades := memory.NewTradeResultStore()
	summaries := memory.NewSummaryStore()
	runner := NewRunner(RunnerOptions{
		Snapshots:  snapshots,
		Trades:     trades,
		Summaries:  summaries,
		BuyConfig:  testBuyConfig(),
		SellConfig: domain.DefaultSellConfig(),
		Workers:    2,
		Logger:     log.New(io.Discard, "", 0),
	})
	return runner, trades, summaries
}

func TestRunPool_MatchedPoolPersistsTrade(t *testing.T) {
	runner, trades, _ := testRunner(t, matchingPool("pool-a"))

	result, err := runner.RunPool(context.Background(), "pool-a")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "pool-a", result.PoolID)
	assert.Equal(t, 27000.0, result.EntryPrice)
	assert.Equal(t, domain.ExitReasonForcedExit, result.ExitReason)
	assert.Equal(t, 26500.0, result.ExitPrice)
	assert.Equal(t, 5, result.ExitIndex)

	stored, err := trades.GetByID(context.Background(), result.TradeID)
	require.NoError(t, err)
	assert.Equal(t, result.TradeID, stored.TradeID)
}

func TestRunPool_NoMatchIsNotAnError(t *testing.T) {
	runner, trades, _ := testRunner(t, quietPool("pool-b"))

	result, err := runner.RunPool(context.Background(), "pool-b")
	require.NoError(t, err)
	assert.Nil(t, result)

	all, err := trades.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRunPool_UnknownPool(t *testing.T) {
	runner, _, _ := testRunner(t)

	result, err := runner.RunPool(context.Background(), "pool-missing")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRunPool_RerunHitsSameTrade(t *testing.T) {
	runner, trades, _ := testRunner(t, matchingPool("pool-a"))

	first, err := runner.RunPool(context.Background(), "pool-a")
	require.NoError(t, err)
	second, err := runner.RunPool(context.Background(), "pool-a")
	require.NoError(t, err)
	assert.Equal(t, first.TradeID, second.TradeID)

	all, err := trades.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRunAll_AggregatesAcrossPools(t *testing.T) {
	runner, trades, summaries := testRunner(t,
		matchingPool("pool-a"),
		quietPool("pool-b"),
		matchingPool("pool-c"),
	)

	summary, results, err := runner.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalTrades)
	require.Len(t, results, 2)
	poolIDs := []string{results[0].PoolID, results[1].PoolID}
	assert.ElementsMatch(t, []string{"pool-a", "pool-c"}, poolIDs)

	all, err := trades.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	stored, err := summaries.GetByStrategy(context.Background(), domain.DefaultSellConfig().ID())
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TotalTrades)
}

func TestRunAll_EmptyStore(t *testing.T) {
	runner, _, _ := testRunner(t)

	summary, results, err := runner.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalTrades)
	assert.Empty(t, results)
}
