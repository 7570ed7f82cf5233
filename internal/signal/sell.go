package signal

import (
	"errors"
	"fmt"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/idhash"
)

// Contract violation errors. These indicate a bug in an upstream
// collaborator, not a runtime condition to recover from.
var (
	ErrEmptyPostEntry    = errors.New("buy opportunity has no post-entry snapshots")
	ErrInvalidEntryPrice = errors.New("buy opportunity entry price must be positive")
)

// SimulateExit walks the post-entry snapshots of a buy opportunity exactly
// once, in order, and decides the single exit point and its cause.
//
// Per-snapshot evaluation order (first matching rule wins):
//  1. Peak update: a new high updates the peak price and peak time before
//     any exit condition is evaluated for this snapshot.
//  2. Stop-loss, unless suppressed by strong holder growth.
//  3. Trailing stop, only within MaxTimeAfterPeakSec of the peak.
//  4. Take-profit, only once momentum has weakened.
//  5. Underperformance after UnderperformMaxTimeSec.
//  6. Forced exit at the final snapshot.
func SimulateExit(opp *domain.BuyOpportunity, cfg domain.SellConfig) (*domain.TradeResult, error) {
	if opp == nil || len(opp.PostEntry) == 0 {
		return nil, ErrEmptyPostEntry
	}
	if opp.EntryPrice <= 0 {
		return nil, ErrInvalidEntryPrice
	}
	if err := domain.ValidateSequence(opp.PostEntry); err != nil {
		return nil, fmt.Errorf("post-entry sequence: %w", err)
	}

	peakPrice := opp.EntryPrice
	peakTimeMs := opp.EntryTimeMs

	last := len(opp.PostEntry) - 1
	exitIdx := last
	exitReason := domain.ExitReasonForcedExit

	for i, s := range opp.PostEntry {
		price := s.MarketCap
		if price > peakPrice {
			peakPrice = price
			peakTimeMs = s.TimestampMs
		}

		ratio := price / opp.EntryPrice

		if ratio <= cfg.StopLoss && !stopLossSuppressed(s, cfg.Stops) {
			exitIdx, exitReason = i, domain.ExitReasonStopLoss
			break
		}

		if price/peakPrice <= cfg.TrailingStop &&
			s.TimestampMs-peakTimeMs <= cfg.Stops.MaxTimeAfterPeakSec*1000 {
			exitIdx, exitReason = i, domain.ExitReasonTrailingStop
			break
		}

		if ratio >= cfg.BaseTakeProfit && !momentumStrong(s, cfg.Momentum) {
			exitIdx, exitReason = i, domain.ExitReasonTakeProfit
			break
		}

		if s.TimestampMs-opp.EntryTimeMs > cfg.Stops.UnderperformMaxTimeSec*1000 &&
			ratio < cfg.Stops.UnderperformThreshold &&
			!holderGrowthAbove(s, cfg.Momentum.LPHolderGrowthThreshold) {
			exitIdx, exitReason = i, domain.ExitReasonUnderperform
			break
		}
	}

	exit := opp.PostEntry[exitIdx]
	ratio := exit.MarketCap / opp.EntryPrice

	return &domain.TradeResult{
		TradeID: idhash.ComputeTradeID(opp.PoolID, opp.EntryTimeMs, cfg.ID()),
		PoolID:  opp.PoolID,

		EntryPrice:  opp.EntryPrice,
		EntryTimeMs: opp.EntryTimeMs,
		EntryIndex:  opp.EntryIndex,

		ExitPrice:  exit.MarketCap,
		ExitTimeMs: exit.TimestampMs,
		ExitIndex:  opp.EntryIndex + 1 + exitIdx,
		ExitReason: exitReason,

		ProfitRatio:    ratio,
		ProfitSOL:      (ratio - 1) * cfg.InitialInvestment,
		MaxProfitRatio: peakPrice / opp.EntryPrice,

		TradeDurationSec: (exit.TimestampMs - opp.EntryTimeMs) / 1000,
		PeakToExitSec:    (exit.TimestampMs - peakTimeMs) / 1000,
	}, nil
}

// stopLossSuppressed reports whether strong holder growth overrides a raw
// price-based stop for this snapshot. A missing holder delta never
// suppresses.
func stopLossSuppressed(s *domain.Snapshot, p domain.StopRuleParams) bool {
	return s.HolderDelta30s != nil && float64(*s.HolderDelta30s) > p.IgnoreStopLossHolderGrowth
}

// holderGrowthAbove reports whether the pool is still acquiring holders
// faster than the given threshold. Used to hold through an otherwise
// underperforming stretch.
func holderGrowthAbove(s *domain.Snapshot, threshold float64) bool {
	return s.HolderDelta30s != nil && float64(*s.HolderDelta30s) > threshold
}
