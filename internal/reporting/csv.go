package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the per-trade rows as a CSV string.
func RenderCSV(trades []TradeRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("trade_id,pool_id,entry_time_ms,entry_price,exit_price,exit_reason,")
	sb.WriteString("profit_ratio,profit_sol,max_profit_ratio,")
	sb.WriteString("trade_duration_sec,peak_to_exit_sec\n")

	// Rows
	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%.6f,%.6f,%s,%.6f,%.6f,%.6f,%d,%d\n",
			t.TradeID,
			t.PoolID,
			t.EntryTimeMs,
			t.EntryPrice,
			t.ExitPrice,
			t.ExitReason,
			t.ProfitRatio,
			t.ProfitSOL,
			t.MaxProfitRatio,
			t.TradeDurationSec,
			t.PeakToExitSec,
		))
	}

	return sb.String()
}
