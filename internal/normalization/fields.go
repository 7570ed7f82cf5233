package normalization

import (
	"strings"
	"unicode"
)

// Canonical snake_case field names. Upstream records arrive with mixed
// naming conventions; everything is renamed to these before a snapshot is
// built, so the engine never sees a naming variant.
const (
	FieldPoolID        = "pool_id"
	FieldTimestamp     = "timestamp"
	FieldMarketCap     = "market_cap"
	FieldCurrentPrice  = "current_price"
	FieldHoldersCount  = "holders_count"
	FieldTimeFromStart = "time_from_start"

	FieldPriceChangePercent = "price_change_percent"

	FieldMarketCapChange5s  = "market_cap_change_5s"
	FieldMarketCapChange10s = "market_cap_change_10s"
	FieldMarketCapChange30s = "market_cap_change_30s"
	FieldMarketCapChange60s = "market_cap_change_60s"

	FieldMAMarketCap10s = "ma_market_cap_10s"
	FieldMAMarketCap30s = "ma_market_cap_30s"
	FieldMAMarketCap60s = "ma_market_cap_60s"

	FieldHolderDelta5s  = "holder_delta_5s"
	FieldHolderDelta10s = "holder_delta_10s"
	FieldHolderDelta30s = "holder_delta_30s"
	FieldHolderDelta60s = "holder_delta_60s"

	FieldBuyVolume5s  = "buy_volume_5s"
	FieldBuyVolume10s = "buy_volume_10s"
	FieldNetVolume5s  = "net_volume_5s"
	FieldNetVolume10s = "net_volume_10s"

	FieldLargeBuy5s  = "large_buy_5s"
	FieldLargeBuy10s = "large_buy_10s"
	FieldBigBuy5s    = "big_buy_5s"
	FieldBigBuy10s   = "big_buy_10s"
	FieldSuperBuy5s  = "super_buy_5s"
	FieldSuperBuy10s = "super_buy_10s"
)

// fieldAliases maps known upstream spellings to their canonical name.
// Mechanical camelCase conversion handles the rest; this table exists for
// renames and misspellings that conversion alone cannot resolve.
var fieldAliases = map[string]string{
	"poolAddress":  FieldPoolID,
	"pool_address": FieldPoolID,
	"pooladdress":  FieldPoolID,
	"PoolAddress":  FieldPoolID,

	"marketcap":  FieldMarketCap,
	"market_Cap": FieldMarketCap,
	"MarketCap":  FieldMarketCap,

	"currentprice":  FieldCurrentPrice,
	"current_Price": FieldCurrentPrice,
	"CurrentPrice":  FieldCurrentPrice,
}

// CanonicalFieldName resolves any known spelling of a field to its
// canonical snake_case form. Unknown names are converted mechanically.
func CanonicalFieldName(name string) string {
	if canonical, ok := fieldAliases[name]; ok {
		return canonical
	}
	return camelToSnake(name)
}

// camelToSnake converts camelCase to snake_case, keeping digit groups
// attached to the preceding word (marketCapChange5s -> market_cap_change_5s).
func camelToSnake(name string) string {
	if name == "" || strings.Contains(name, "_") {
		return strings.ToLower(name)
	}

	var b strings.Builder
	b.Grow(len(name) + 4)
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if unicode.IsDigit(r) && i > 0 && unicode.IsLetter(runes[i-1]) {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return b.String()
}
