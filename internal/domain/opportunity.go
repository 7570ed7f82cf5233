package domain

// Canonical metric names used in entry metric captures and threshold
// evaluation. These are the snake_case names the normalization layer
// maps both upstream conventions onto.
const (
	MetricPriceChange              = "price_change"
	MetricMarketCapChange5s        = "market_cap_change_5s"
	MetricMarketCapChange30s       = "market_cap_change_30s"
	MetricHolderDelta30s           = "holder_delta_30s"
	MetricBuyVolume5s              = "buy_volume_5s"
	MetricNetVolume5s              = "net_volume_5s"
	MetricBuySellRatio10s          = "buy_sell_ratio_10s"
	MetricMarketCapGrowthFromStart = "market_cap_growth_from_start"
	MetricHolderGrowthFromStart    = "holder_growth_from_start"
	MetricLargeBuy5s               = "large_buy_5s"
)

// BuyOpportunity is the result of a successful entry pattern match.
// PostEntry holds all snapshots strictly after EntryIndex and is never
// empty: an entry with no forward data is not reported as an opportunity.
type BuyOpportunity struct {
	PoolID       string
	EntryPrice   float64 // market cap at entry
	EntryTimeMs  int64
	EntryIndex   int // position in the full pool sequence
	EntryMetrics map[string]float64
	PostEntry    []*Snapshot
}
