package normalization

import "strconv"

// tradeWindow names a nested short-window trade block and the suffix its
// flattened metrics carry.
type tradeWindow struct {
	keys   []string
	suffix string
}

// Key sets cover the canonicalized forms of both upstream spellings
// (trade_last5Seconds and tradeLast5Seconds).
var tradeWindows = []tradeWindow{
	{keys: []string{"trade_last5seconds", "trade_last_5_seconds"}, suffix: "5s"},
	{keys: []string{"trade_last10seconds", "trade_last_10_seconds"}, suffix: "10s"},
}

// flattenTradeWindows lifts the nested per-window trade breakdowns into flat
// canonical fields on the record: buy and net volume from the volume block
// and the large/big/super buy counts from the trade-count block. Volumes may
// arrive string-encoded. Existing flat fields are never overwritten.
func flattenTradeWindows(record map[string]any) {
	for _, w := range tradeWindows {
		block := lookupAny(record, w.keys)
		if block == nil {
			continue
		}
		nested, ok := block.(map[string]any)
		if !ok {
			continue
		}

		if vol, ok := nested["volume"].(map[string]any); ok {
			buy, buyOK := asFloat(vol["buy"])
			sell, sellOK := asFloat(vol["sell"])
			if buyOK {
				setIfAbsent(record, "buy_volume_"+w.suffix, buy)
				if sellOK {
					setIfAbsent(record, "net_volume_"+w.suffix, buy-sell)
				}
			}
		}

		if counts, ok := nested["tradeCount"].(map[string]any); ok {
			if buys, ok := counts["buy"].(map[string]any); ok {
				if v, ok := asFloat(buys["large"]); ok {
					setIfAbsent(record, "large_buy_"+w.suffix, v)
				}
				if v, ok := asFloat(buys["big"]); ok {
					setIfAbsent(record, "big_buy_"+w.suffix, v)
				}
				if v, ok := asFloat(buys["super"]); ok {
					setIfAbsent(record, "super_buy_"+w.suffix, v)
				}
			}
		}
	}
}

func lookupAny(record map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := record[k]; ok {
			return v
		}
	}
	return nil
}

func setIfAbsent(record map[string]any, key string, v float64) {
	if _, ok := record[key]; !ok {
		record[key] = v
	}
}

// asFloat coerces the numeric encodings seen in upstream records: JSON
// numbers, integer counts, and string-encoded decimals.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
