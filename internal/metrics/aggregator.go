package metrics

import (
	"sort"

	"solana-pool-lab/internal/domain"
)

// Summarize reduces a set of trade results to a Summary. The input order
// does not matter: trades are sorted by entry time (trade id as tiebreak)
// before the order-dependent statistics are computed, so repeated calls on
// the same set always agree. An empty or nil input yields the zero Summary.
func Summarize(results []*domain.TradeResult) *Summary {
	s := emptySummary()
	n := len(results)
	if n == 0 {
		return s
	}

	sorted := make([]*domain.TradeResult, n)
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].EntryTimeMs != sorted[j].EntryTimeMs {
			return sorted[i].EntryTimeMs < sorted[j].EntryTimeMs
		}
		return sorted[i].TradeID < sorted[j].TradeID
	})

	ratios := make([]float64, n)
	sumRatio := 0.0
	maxRatio := sorted[0].ProfitRatio
	sumDuration := int64(0)

	for i, r := range sorted {
		ratios[i] = r.ProfitRatio
		sumRatio += r.ProfitRatio
		if r.ProfitRatio > maxRatio {
			maxRatio = r.ProfitRatio
		}
		sumDuration += r.TradeDurationSec
		s.TotalProfitSOL += r.ProfitSOL
		s.ExitReasons[r.ExitReason]++

		if r.ProfitRatio > 1 {
			s.Wins++
		} else {
			s.Losses++
		}
	}

	s.TotalTrades = n
	s.WinRate = float64(s.Wins) / float64(n)
	s.MeanProfitRatio = sumRatio / float64(n)
	s.MaxProfitRatio = maxRatio
	s.MeanDurationSec = float64(sumDuration) / float64(n)
	s.ProfitRatioStddev = stddev(ratios, s.MeanProfitRatio)
	s.MaxDrawdown = maxDrawdown(sorted)
	s.MaxConsecutiveLosses = maxConsecutiveLosses(sorted)

	sort.Float64s(ratios)
	s.MedianProfitRatio = percentile(ratios, 0.50)
	s.ProfitRatioP10 = percentile(ratios, 0.10)
	s.ProfitRatioP90 = percentile(ratios, 0.90)

	return s
}

// Accumulator folds trade results incrementally as a batch run produces
// them. It keeps cheap running counters for progress reporting and retains
// the results so that Summary can compute the full distribution. Not safe
// for concurrent use; feed it from a single goroutine.
type Accumulator struct {
	results []*domain.TradeResult

	count int
	wins  int
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add folds one trade result into the accumulator.
func (a *Accumulator) Add(r *domain.TradeResult) {
	if r == nil {
		return
	}
	a.results = append(a.results, r)
	a.count++
	if r.ProfitRatio > 1 {
		a.wins++
	}
}

// Count returns the number of results folded so far.
func (a *Accumulator) Count() int { return a.count }

// WinRate returns the running fraction of winning trades, 0 when empty.
func (a *Accumulator) WinRate() float64 {
	if a.count == 0 {
		return 0
	}
	return float64(a.wins) / float64(a.count)
}

// Summary computes the full aggregate over everything added so far.
func (a *Accumulator) Summary() *Summary {
	return Summarize(a.results)
}

// Results returns the accumulated trade results in insertion order.
func (a *Accumulator) Results() []*domain.TradeResult {
	return a.results
}
