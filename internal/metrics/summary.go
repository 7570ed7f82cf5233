package metrics

import "solana-pool-lab/internal/domain"

// Summary holds the aggregate view over a set of trade results. A Summary
// with TotalTrades == 0 is the defined "no trades" value; it is not an
// error.
type Summary struct {
	TotalTrades int `json:"total_trades"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`

	// WinRate is the fraction of trades with profit_ratio > 1.
	WinRate float64 `json:"win_rate"`

	MeanProfitRatio   float64 `json:"mean_profit_ratio"`
	MedianProfitRatio float64 `json:"median_profit_ratio"`
	MaxProfitRatio    float64 `json:"max_profit_ratio"`
	ProfitRatioStddev float64 `json:"profit_ratio_stddev"`
	ProfitRatioP10    float64 `json:"profit_ratio_p10"`
	ProfitRatioP90    float64 `json:"profit_ratio_p90"`

	TotalProfitSOL float64 `json:"total_profit_sol"`

	MeanDurationSec float64 `json:"mean_duration_sec"`

	// MaxDrawdown is the worst peak-to-trough decline of the cumulative
	// profit curve, with trades ordered by entry time.
	MaxDrawdown          float64 `json:"max_drawdown"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`

	// ExitReasons counts results per exit cause. Every known reason is
	// present, including zero counts, so consumers can iterate a stable set.
	ExitReasons map[string]int `json:"exit_reasons"`
}

func emptySummary() *Summary {
	reasons := make(map[string]int, len(domain.ExitReasons))
	for _, r := range domain.ExitReasons {
		reasons[r] = 0
	}
	return &Summary{ExitReasons: reasons}
}
