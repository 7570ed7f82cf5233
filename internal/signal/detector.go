package signal

import (
	"fmt"
	"math"

	"solana-pool-lab/internal/domain"
)

// thresholdCheck pairs a canonical metric name with its configured floor.
type thresholdCheck struct {
	metric    string
	threshold float64
}

// FindOpportunity scans a pool's snapshot sequence for the earliest valid
// entry point. It returns (nil, nil) when no snapshot qualifies; an error
// is returned only for contract violations in the input sequence.
//
// The scan is a single forward pass:
//  1. Snapshots above EarlyMarketCapLimit cannot be entry candidates.
//  2. A candidate qualifies only if every configured threshold is exceeded
//     simultaneously. A missing metric fails its comparison.
//  3. The entry is the first snapshot whose elapsed time since the
//     qualifying candidate falls within [MinDelaySec, MaxDelaySec]. If the
//     window produces no snapshot, the candidate is discarded and the scan
//     resumes at the next index.
func FindOpportunity(snaps []*domain.Snapshot, cfg domain.BuyConfig) (*domain.BuyOpportunity, error) {
	if err := domain.ValidateSequence(snaps); err != nil {
		return nil, fmt.Errorf("snapshot sequence: %w", err)
	}

	// MinSnapshots may legitimately be zero; an empty sequence is still a
	// no-match, not a panic.
	if len(snaps) == 0 || len(snaps) < cfg.MinSnapshots {
		return nil, nil
	}

	checks := buildChecks(cfg.Thresholds)
	first := snaps[0]
	minDelayMs := cfg.MinDelaySec * 1000
	maxDelayMs := cfg.MaxDelaySec * 1000

	for i, s := range snaps {
		if s.MarketCap > cfg.EarlyMarketCapLimit {
			continue
		}

		if !meetsAll(snapshotMetrics(first, s), checks) {
			continue
		}

		entry := selectEntry(snaps, i, minDelayMs, maxDelayMs)
		if entry < 0 || entry == len(snaps)-1 {
			// No snapshot inside the delay window, or entry would leave no
			// post-entry data. Discard this pattern and keep scanning.
			continue
		}

		es := snaps[entry]
		return &domain.BuyOpportunity{
			PoolID:       es.PoolID,
			EntryPrice:   es.MarketCap,
			EntryTimeMs:  es.TimestampMs,
			EntryIndex:   entry,
			EntryMetrics: snapshotMetrics(first, es),
			PostEntry:    snaps[entry+1:],
		}, nil
	}

	return nil, nil
}

// selectEntry returns the index of the first snapshot at or after i whose
// elapsed time since i lies within [minDelayMs, maxDelayMs], or -1.
func selectEntry(snaps []*domain.Snapshot, i int, minDelayMs, maxDelayMs int64) int {
	base := snaps[i].TimestampMs
	for j := i; j < len(snaps); j++ {
		d := snaps[j].TimestampMs - base
		if d < minDelayMs {
			continue
		}
		if d > maxDelayMs {
			return -1
		}
		return j
	}
	return -1
}

func buildChecks(t domain.BuyThresholds) []thresholdCheck {
	return []thresholdCheck{
		{domain.MetricPriceChange, t.PriceChange},
		{domain.MetricMarketCapChange5s, t.MarketCapChange5s},
		{domain.MetricMarketCapChange30s, t.MarketCapChange30s},
		{domain.MetricHolderDelta30s, t.HolderDelta30s},
		{domain.MetricBuyVolume5s, t.BuyVolume5s},
		{domain.MetricNetVolume5s, t.NetVolume5s},
		{domain.MetricBuySellRatio10s, t.BuySellRatio10s},
		{domain.MetricMarketCapGrowthFromStart, t.MarketCapGrowthFromStart},
		{domain.MetricHolderGrowthFromStart, t.HolderGrowthFromStart},
		{domain.MetricLargeBuy5s, t.LargeBuy5s},
	}
}

// meetsAll is the conjunctive threshold match. Absent metrics never satisfy
// their threshold.
func meetsAll(metrics map[string]float64, checks []thresholdCheck) bool {
	for _, c := range checks {
		v, ok := metrics[c.metric]
		if !ok || v <= c.threshold {
			return false
		}
	}
	return true
}

// snapshotMetrics assembles the named metric values available at snapshot s,
// including the derived growth-from-start metrics relative to the pool's
// first snapshot. Missing source fields simply produce no map entry.
func snapshotMetrics(first, s *domain.Snapshot) map[string]float64 {
	m := make(map[string]float64, 10)

	if s.PriceChangePercent != nil {
		m[domain.MetricPriceChange] = *s.PriceChangePercent
	}
	if s.MarketCapChange5s != nil {
		m[domain.MetricMarketCapChange5s] = *s.MarketCapChange5s
	}
	if s.MarketCapChange30s != nil {
		m[domain.MetricMarketCapChange30s] = *s.MarketCapChange30s
	}
	if s.HolderDelta30s != nil {
		m[domain.MetricHolderDelta30s] = float64(*s.HolderDelta30s)
	}
	if s.BuyVolume5s != nil {
		m[domain.MetricBuyVolume5s] = *s.BuyVolume5s
	}
	if s.NetVolume5s != nil {
		m[domain.MetricNetVolume5s] = *s.NetVolume5s
	}
	if s.LargeBuy5s != nil {
		m[domain.MetricLargeBuy5s] = float64(*s.LargeBuy5s)
	}

	// Sell volume over 10s is reconstructed from buy and net volume. Zero
	// sell pressure with positive buys is maximal imbalance, not a gap.
	if s.BuyVolume10s != nil && s.NetVolume10s != nil {
		buy := *s.BuyVolume10s
		sell := buy - *s.NetVolume10s
		switch {
		case sell > 0:
			m[domain.MetricBuySellRatio10s] = buy / sell
		case buy > 0:
			m[domain.MetricBuySellRatio10s] = math.Inf(1)
		}
	}

	if first.MarketCap > 0 {
		m[domain.MetricMarketCapGrowthFromStart] = (s.MarketCap/first.MarketCap - 1) * 100
	}
	m[domain.MetricHolderGrowthFromStart] = float64(s.HoldersCount - first.HoldersCount)

	return m
}
