package domain

import "fmt"

// Snapshot represents one timestamped market observation of a pool.
// Windowed metrics are pointers: nil means the upstream source did not
// provide the field, which is distinct from a zero value. Threshold
// comparisons against a nil metric never pass.
type Snapshot struct {
	PoolID           string
	TimestampMs      int64 // UTC epoch milliseconds
	MarketCap        float64
	Price            float64
	HoldersCount     int64
	TimeFromStartSec int64 // seconds since the pool's first snapshot

	// Holder deltas over short windows
	HolderDelta5s  *int64
	HolderDelta10s *int64
	HolderDelta30s *int64
	HolderDelta60s *int64

	// Market cap change percentages over short windows
	MarketCapChange5s  *float64
	MarketCapChange10s *float64
	MarketCapChange30s *float64
	MarketCapChange60s *float64

	// Moving averages of market cap
	MAMarketCap10s *float64
	MAMarketCap30s *float64
	MAMarketCap60s *float64

	// Volumes in SOL over short windows
	BuyVolume5s  *float64
	BuyVolume10s *float64
	NetVolume5s  *float64
	NetVolume10s *float64

	// Buy counts by size bucket, flattened from the nested
	// per-window trade breakdowns by the normalization layer
	LargeBuy5s  *int64
	LargeBuy10s *int64
	BigBuy5s    *int64
	BigBuy10s   *int64
	SuperBuy5s  *int64
	SuperBuy10s *int64

	PriceChangePercent *float64
}

// ValidateSequence checks the per-pool snapshot sequence invariants:
// a single pool id throughout and non-decreasing timestamps.
func ValidateSequence(snaps []*Snapshot) error {
	for i, s := range snaps {
		if s == nil {
			return fmt.Errorf("snapshot %d is nil", i)
		}
		if i == 0 {
			continue
		}
		if s.PoolID != snaps[0].PoolID {
			return fmt.Errorf("snapshot %d: pool id %s does not match %s", i, s.PoolID, snaps[0].PoolID)
		}
		if s.TimestampMs < snaps[i-1].TimestampMs {
			return fmt.Errorf("snapshot %d: timestamp %d precedes %d", i, s.TimestampMs, snaps[i-1].TimestampMs)
		}
	}
	return nil
}

// Float64Ptr returns a pointer to v. Convenience for building snapshots.
func Float64Ptr(v float64) *float64 { return &v }

// Int64Ptr returns a pointer to v. Convenience for building snapshots.
func Int64Ptr(v int64) *int64 { return &v }
