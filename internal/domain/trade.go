package domain

// TradeResult is the outcome of simulating the sell strategy against a
// buy opportunity.
type TradeResult struct {
	TradeID string // deterministic hash
	PoolID  string

	// Entry
	EntryPrice  float64
	EntryTimeMs int64
	EntryIndex  int

	// Exit
	ExitPrice  float64
	ExitTimeMs int64
	ExitIndex  int // position in the full pool sequence; always > EntryIndex
	ExitReason string

	// Outcome
	ProfitRatio    float64 // exit_price / entry_price
	ProfitSOL      float64 // (profit_ratio - 1) * initial_investment
	MaxProfitRatio float64 // peak price / entry_price observed before exit

	// Timing
	TradeDurationSec int64
	PeakToExitSec    int64
}

// Exit reason codes
const (
	ExitReasonTakeProfit   = "TAKE_PROFIT"
	ExitReasonStopLoss     = "STOP_LOSS"
	ExitReasonTrailingStop = "TRAILING_STOP"
	ExitReasonUnderperform = "UNDERPERFORM"
	ExitReasonForcedExit   = "FORCED_EXIT"
)

// ExitReasons lists all exit reason codes in decision-table order.
var ExitReasons = []string{
	ExitReasonStopLoss,
	ExitReasonTrailingStop,
	ExitReasonTakeProfit,
	ExitReasonUnderperform,
	ExitReasonForcedExit,
}
