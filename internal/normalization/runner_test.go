package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalFieldName(t *testing.T) {
	cases := map[string]string{
		"marketCap":            "market_cap",
		"market_cap":           "market_cap",
		"marketcap":            "market_cap",
		"MarketCap":            "market_cap",
		"marketCapChange5s":    "market_cap_change_5s",
		"holderDelta30s":       "holder_delta_30s",
		"maMarketCap10s":       "ma_market_cap_10s",
		"poolAddress":          "pool_id",
		"pool_address":         "pool_id",
		"priceChangePercent":   "price_change_percent",
		"buyVolume10s":         "buy_volume_10s",
		"timestamp":            "timestamp",
		"holders_count":        "holders_count",
		"somethingUnmappedRaw": "something_unmapped_raw",
	}

	for in, want := range cases {
		assert.Equal(t, want, CanonicalFieldName(in), "input %q", in)
	}
}

func TestNormalizeRecord_MixedConventions(t *testing.T) {
	raw := map[string]any{
		"poolAddress":       "So11111111111111111111111111111111111111112",
		"timestamp":         float64(1700000000000),
		"marketCap":         float64(25000),
		"holders_count":     float64(60),
		"holderDelta30s":    float64(30),
		"market_cap_change_5s": float64(12.5),
		"buyVolume5s":       "10.25", // string-encoded
	}

	s, err := NormalizeRecord(raw)
	require.NoError(t, err)

	assert.Equal(t, "So11111111111111111111111111111111111111112", s.PoolID)
	assert.Equal(t, int64(1700000000000), s.TimestampMs)
	assert.Equal(t, 25000.0, s.MarketCap)
	assert.Equal(t, int64(60), s.HoldersCount)
	require.NotNil(t, s.HolderDelta30s)
	assert.Equal(t, int64(30), *s.HolderDelta30s)
	require.NotNil(t, s.MarketCapChange5s)
	assert.Equal(t, 12.5, *s.MarketCapChange5s)
	require.NotNil(t, s.BuyVolume5s)
	assert.Equal(t, 10.25, *s.BuyVolume5s)

	// Absent metrics stay nil rather than defaulting to zero.
	assert.Nil(t, s.NetVolume5s)
	assert.Nil(t, s.PriceChangePercent)
}

func TestNormalizeRecord_FlattensNestedTradeWindows(t *testing.T) {
	raw := map[string]any{
		"poolAddress": "pool-1",
		"timestamp":   float64(1700000000000),
		"marketCap":   float64(25000),
		"trade_last5Seconds": map[string]any{
			"volume": map[string]any{
				"buy":  "12.5",
				"sell": "2.5",
			},
			"tradeCount": map[string]any{
				"buy": map[string]any{
					"small":  float64(4),
					"medium": float64(2),
					"large":  float64(2),
					"big":    float64(1),
					"super":  float64(0),
				},
			},
		},
		"tradeLast10Seconds": map[string]any{
			"volume": map[string]any{
				"buy":  float64(20),
				"sell": float64(5),
			},
		},
	}

	s, err := NormalizeRecord(raw)
	require.NoError(t, err)

	require.NotNil(t, s.BuyVolume5s)
	assert.Equal(t, 12.5, *s.BuyVolume5s)
	require.NotNil(t, s.NetVolume5s)
	assert.Equal(t, 10.0, *s.NetVolume5s)
	require.NotNil(t, s.LargeBuy5s)
	assert.Equal(t, int64(2), *s.LargeBuy5s)
	require.NotNil(t, s.BigBuy5s)
	assert.Equal(t, int64(1), *s.BigBuy5s)
	require.NotNil(t, s.SuperBuy5s)
	assert.Equal(t, int64(0), *s.SuperBuy5s)

	require.NotNil(t, s.BuyVolume10s)
	assert.Equal(t, 20.0, *s.BuyVolume10s)
	require.NotNil(t, s.NetVolume10s)
	assert.Equal(t, 15.0, *s.NetVolume10s)
}

func TestNormalizeRecord_FlatFieldWinsOverNested(t *testing.T) {
	raw := map[string]any{
		"poolAddress":   "pool-1",
		"timestamp":     float64(1700000000000),
		"marketCap":     float64(25000),
		"buy_volume_5s": float64(99),
		"trade_last5Seconds": map[string]any{
			"volume": map[string]any{"buy": float64(12.5), "sell": float64(2.5)},
		},
	}

	s, err := NormalizeRecord(raw)
	require.NoError(t, err)
	require.NotNil(t, s.BuyVolume5s)
	assert.Equal(t, 99.0, *s.BuyVolume5s)
}

func TestNormalizeRecord_MissingRequiredFields(t *testing.T) {
	_, err := NormalizeRecord(map[string]any{
		"timestamp": float64(1700000000000),
		"marketCap": float64(25000),
	})
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = NormalizeRecord(map[string]any{
		"poolAddress": "pool-1",
		"marketCap":   float64(25000),
	})
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = NormalizeRecord(map[string]any{
		"poolAddress": "pool-1",
		"timestamp":   float64(1700000000000),
	})
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestNormalizeSequence_SortsAndDerivesTimeFromStart(t *testing.T) {
	rec := func(tsMs int64, mc float64) map[string]any {
		return map[string]any{
			"poolAddress": "pool-1",
			"timestamp":   float64(tsMs),
			"marketCap":   mc,
		}
	}

	snaps, err := NormalizeSequence([]map[string]any{
		rec(1700000010000, 12000),
		rec(1700000000000, 10000),
		rec(1700000005000, 11000),
	})
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	assert.Equal(t, int64(1700000000000), snaps[0].TimestampMs)
	assert.Equal(t, int64(1700000010000), snaps[2].TimestampMs)
	assert.Equal(t, int64(0), snaps[0].TimeFromStartSec)
	assert.Equal(t, int64(5), snaps[1].TimeFromStartSec)
	assert.Equal(t, int64(10), snaps[2].TimeFromStartSec)
}

func TestNormalizeSequence_Empty(t *testing.T) {
	snaps, err := NormalizeSequence(nil)
	require.NoError(t, err)
	assert.Nil(t, snaps)
}

func TestNormalizeSequence_RejectsMixedPools(t *testing.T) {
	_, err := NormalizeSequence([]map[string]any{
		{"poolAddress": "pool-1", "timestamp": float64(1000), "marketCap": float64(1)},
		{"poolAddress": "pool-2", "timestamp": float64(2000), "marketCap": float64(1)},
	})
	require.Error(t, err)
}
