package metrics

import (
	"math"

	"solana-pool-lab/internal/domain"
)

// stddev calculates the sample standard deviation (n-1 denominator).
func stddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// percentile uses linear interpolation over a pre-sorted ascending slice.
// p is the percentile as a fraction (0.10 = 10th percentile).
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// maxDrawdown calculates the worst peak-to-trough decline of the cumulative
// realized profit curve. Trades must be in chronological order.
func maxDrawdown(trades []*domain.TradeResult) float64 {
	cumulative := 0.0
	peak := 0.0
	worst := 0.0

	for _, t := range trades {
		cumulative += t.ProfitSOL
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > worst {
			worst = dd
		}
	}
	return worst
}

// maxConsecutiveLosses finds the longest streak of non-winning trades in
// chronological order.
func maxConsecutiveLosses(trades []*domain.TradeResult) int {
	maxStreak := 0
	streak := 0

	for _, t := range trades {
		if t.ProfitRatio <= 1 {
			streak++
			if streak > maxStreak {
				maxStreak = streak
			}
		} else {
			streak = 0
		}
	}
	return maxStreak
}
