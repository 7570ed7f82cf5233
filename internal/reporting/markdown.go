package reporting

import (
	"fmt"
	"strings"
	"time"

	"solana-pool-lab/internal/domain"
)

// RenderMarkdown renders a report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Strategy: %s\n\n", r.StrategyID))

	// Aggregate
	s := r.Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", s.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Wins | %d |\n", s.Wins))
	sb.WriteString(fmt.Sprintf("| Losses | %d |\n", s.Losses))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.4f |\n", s.WinRate))
	sb.WriteString(fmt.Sprintf("| Mean Profit Ratio | %.4f |\n", s.MeanProfitRatio))
	sb.WriteString(fmt.Sprintf("| Median Profit Ratio | %.4f |\n", s.MedianProfitRatio))
	sb.WriteString(fmt.Sprintf("| Max Profit Ratio | %.4f |\n", s.MaxProfitRatio))
	sb.WriteString(fmt.Sprintf("| Profit Ratio Stddev | %.4f |\n", s.ProfitRatioStddev))
	sb.WriteString(fmt.Sprintf("| Profit Ratio P10 | %.4f |\n", s.ProfitRatioP10))
	sb.WriteString(fmt.Sprintf("| Profit Ratio P90 | %.4f |\n", s.ProfitRatioP90))
	sb.WriteString(fmt.Sprintf("| Total Profit (SOL) | %.4f |\n", s.TotalProfitSOL))
	sb.WriteString(fmt.Sprintf("| Mean Duration (sec) | %.1f |\n", s.MeanDurationSec))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.4f |\n", s.MaxDrawdown))
	sb.WriteString(fmt.Sprintf("| Max Consecutive Losses | %d |\n", s.MaxConsecutiveLosses))
	sb.WriteString("\n")

	// Exit reasons in decision-table order
	sb.WriteString("## Exit Reasons\n\n")
	sb.WriteString("| Reason | Count |\n")
	sb.WriteString("|--------|-------|\n")
	for _, reason := range domain.ExitReasons {
		sb.WriteString(fmt.Sprintf("| %s | %d |\n", reason, s.ExitReasons[reason]))
	}
	sb.WriteString("\n")

	// Trades
	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Pool | Entry (ms) | Entry | Exit | Reason | Ratio | Profit (SOL) | Peak | Duration (s) |\n")
		sb.WriteString("|------|-----------|-------|------|--------|-------|--------------|------|-------------|\n")
		for _, t := range r.Trades {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.4f | %.4f | %s | %.4f | %.4f | %.4f | %d |\n",
				t.PoolID, t.EntryTimeMs, t.EntryPrice, t.ExitPrice, t.ExitReason,
				t.ProfitRatio, t.ProfitSOL, t.MaxProfitRatio, t.TradeDurationSec))
		}
	} else {
		sb.WriteString("No trades recorded.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
