package domain

import "fmt"

// BuyThresholds is the named threshold set evaluated conjunctively by the
// buy detector. Every threshold must be exceeded simultaneously for a
// snapshot to qualify; a missing metric fails its comparison.
type BuyThresholds struct {
	PriceChange              float64 `json:"price_change"`
	MarketCapChange5s        float64 `json:"market_cap_change_5s"`
	MarketCapChange30s       float64 `json:"market_cap_change_30s"`
	HolderDelta30s           float64 `json:"holder_delta_30s"`
	BuyVolume5s              float64 `json:"buy_volume_5s"`
	NetVolume5s              float64 `json:"net_volume_5s"`
	BuySellRatio10s          float64 `json:"buy_sell_ratio_10s"`
	MarketCapGrowthFromStart float64 `json:"market_cap_growth_from_start"`
	HolderGrowthFromStart    float64 `json:"holder_growth_from_start"`
	LargeBuy5s               float64 `json:"large_buy_5s"`
}

// BuyConfig configures the buy opportunity detector. All parameters are
// explicit; the zero value is not a usable configuration.
type BuyConfig struct {
	EarlyMarketCapLimit float64       `json:"early_market_cap_limit"`
	MinDelaySec         int64         `json:"min_delay_seconds"`
	MaxDelaySec         int64         `json:"max_delay_seconds"`
	MinSnapshots        int           `json:"min_snapshots"`
	Thresholds          BuyThresholds `json:"thresholds"`
}

// MomentumParams configures the momentum evaluation used by the take-profit
// rule, plus the holder-growth gate for the underperformance rule.
type MomentumParams struct {
	MCChangeThreshold       float64 `json:"mc_change_threshold"`
	HolderChangeThreshold   float64 `json:"holder_change_threshold"`
	BuyVolumeThreshold      float64 `json:"buy_volume_threshold"`
	NetVolumeThreshold      float64 `json:"net_volume_threshold"`
	RequiredStrongCount     int     `json:"required_strong_count"`
	LPHolderGrowthThreshold float64 `json:"lp_holder_growth_threshold"`
}

// StopRuleParams configures the stop-loss suppression and the
// time-bounded exit rules.
type StopRuleParams struct {
	IgnoreStopLossHolderGrowth float64 `json:"ignore_stoploss_holder_growth"`
	MaxTimeAfterPeakSec        int64   `json:"max_time_after_peak"`
	UnderperformThreshold      float64 `json:"underperform_threshold"`
	UnderperformMaxTimeSec     int64   `json:"underperform_max_time"`
}

// SellConfig configures the sell exit engine.
type SellConfig struct {
	InitialInvestment float64        `json:"initial_investment"`
	BaseTakeProfit    float64        `json:"base_take_profit"`
	StopLoss          float64        `json:"stop_loss"`
	TrailingStop      float64        `json:"trailing_stop"`
	Momentum          MomentumParams `json:"momentum"`
	Stops             StopRuleParams `json:"stops"`
}

// ID returns the strategy fingerprint including the exit parameters.
// Used as part of the deterministic trade id.
func (c SellConfig) ID() string {
	return fmt.Sprintf("tp%.2f_sl%.2f_ts%.2f_strong%d_peak%ds_up%.2f-%ds",
		c.BaseTakeProfit,
		c.StopLoss,
		c.TrailingStop,
		c.Momentum.RequiredStrongCount,
		c.Stops.MaxTimeAfterPeakSec,
		c.Stops.UnderperformThreshold,
		c.Stops.UnderperformMaxTimeSec)
}

// DefaultBuyConfig returns the tuned entry parameters carried over from
// historical grid searches.
func DefaultBuyConfig() BuyConfig {
	return BuyConfig{
		EarlyMarketCapLimit: 400000,
		MinDelaySec:         60,
		MaxDelaySec:         200,
		MinSnapshots:        210,
		Thresholds: BuyThresholds{
			PriceChange:              1.0,
			MarketCapChange5s:        5.0,
			MarketCapChange30s:       10.0,
			HolderDelta30s:           20,
			BuyVolume5s:              5.0,
			NetVolume5s:              0.0,
			BuySellRatio10s:          1.5,
			MarketCapGrowthFromStart: 10.0,
			HolderGrowthFromStart:    20,
			LargeBuy5s:               1,
		},
	}
}

// DefaultSellConfig returns the tuned exit parameters carried over from
// historical grid searches.
func DefaultSellConfig() SellConfig {
	return SellConfig{
		InitialInvestment: 1.0,
		BaseTakeProfit:    1.9,
		StopLoss:          0.65,
		TrailingStop:      0.9,
		Momentum: MomentumParams{
			MCChangeThreshold:       6.0,
			HolderChangeThreshold:   24.5,
			BuyVolumeThreshold:      13.0,
			NetVolumeThreshold:      3.0,
			RequiredStrongCount:     1,
			LPHolderGrowthThreshold: 0.0,
		},
		Stops: StopRuleParams{
			IgnoreStopLossHolderGrowth: 10.0,
			MaxTimeAfterPeakSec:        300,
			UnderperformThreshold:      1.2,
			UnderperformMaxTimeSec:     600,
		},
	}
}
