package normalization

import (
	"errors"
	"fmt"
	"sort"

	"solana-pool-lab/internal/domain"
)

// ErrMissingField is returned when a record lacks one of the fields every
// snapshot must carry.
var ErrMissingField = errors.New("record missing required field")

// NormalizeRecord converts one raw upstream record into a snapshot. Keys are
// renamed to their canonical form and nested trade windows are flattened
// first, so mixed naming conventions in the source never reach the caller.
// Optional metric fields that are absent or unparseable stay nil.
func NormalizeRecord(raw map[string]any) (*domain.Snapshot, error) {
	// Two passes so an already-canonical key wins over its variants when a
	// record carries both spellings.
	record := make(map[string]any, len(raw))
	for k, v := range raw {
		if CanonicalFieldName(k) == k {
			record[k] = v
		}
	}
	for k, v := range raw {
		canonical := CanonicalFieldName(k)
		if _, ok := record[canonical]; !ok {
			record[canonical] = v
		}
	}
	flattenTradeWindows(record)

	poolID, ok := record[FieldPoolID].(string)
	if !ok || poolID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldPoolID)
	}
	ts, ok := asFloat(record[FieldTimestamp])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldTimestamp)
	}
	mc, ok := asFloat(record[FieldMarketCap])
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldMarketCap)
	}

	s := &domain.Snapshot{
		PoolID:      poolID,
		TimestampMs: int64(ts),
		MarketCap:   mc,
	}

	if v, ok := asFloat(record[FieldCurrentPrice]); ok {
		s.Price = v
	}
	if v, ok := asFloat(record[FieldHoldersCount]); ok {
		s.HoldersCount = int64(v)
	}
	if v, ok := asFloat(record[FieldTimeFromStart]); ok {
		s.TimeFromStartSec = int64(v)
	}

	s.PriceChangePercent = floatField(record, FieldPriceChangePercent)

	s.MarketCapChange5s = floatField(record, FieldMarketCapChange5s)
	s.MarketCapChange10s = floatField(record, FieldMarketCapChange10s)
	s.MarketCapChange30s = floatField(record, FieldMarketCapChange30s)
	s.MarketCapChange60s = floatField(record, FieldMarketCapChange60s)

	s.MAMarketCap10s = floatField(record, FieldMAMarketCap10s)
	s.MAMarketCap30s = floatField(record, FieldMAMarketCap30s)
	s.MAMarketCap60s = floatField(record, FieldMAMarketCap60s)

	s.HolderDelta5s = intField(record, FieldHolderDelta5s)
	s.HolderDelta10s = intField(record, FieldHolderDelta10s)
	s.HolderDelta30s = intField(record, FieldHolderDelta30s)
	s.HolderDelta60s = intField(record, FieldHolderDelta60s)

	s.BuyVolume5s = floatField(record, FieldBuyVolume5s)
	s.BuyVolume10s = floatField(record, FieldBuyVolume10s)
	s.NetVolume5s = floatField(record, FieldNetVolume5s)
	s.NetVolume10s = floatField(record, FieldNetVolume10s)

	s.LargeBuy5s = intField(record, FieldLargeBuy5s)
	s.LargeBuy10s = intField(record, FieldLargeBuy10s)
	s.BigBuy5s = intField(record, FieldBigBuy5s)
	s.BigBuy10s = intField(record, FieldBigBuy10s)
	s.SuperBuy5s = intField(record, FieldSuperBuy5s)
	s.SuperBuy10s = intField(record, FieldSuperBuy10s)

	return s, nil
}

// NormalizeSequence converts a batch of raw records belonging to one pool
// into an ordered snapshot sequence. Snapshots are sorted by timestamp,
// TimeFromStartSec is derived from the first snapshot when the source did
// not supply it, and the resulting sequence is validated before return.
func NormalizeSequence(records []map[string]any) ([]*domain.Snapshot, error) {
	if len(records) == 0 {
		return nil, nil
	}

	snaps := make([]*domain.Snapshot, 0, len(records))
	for i, raw := range records {
		s, err := NormalizeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		snaps = append(snaps, s)
	}

	SortSnapshots(snaps)

	first := snaps[0].TimestampMs
	for _, s := range snaps {
		if s.TimeFromStartSec == 0 {
			s.TimeFromStartSec = (s.TimestampMs - first) / 1000
		}
	}

	if err := domain.ValidateSequence(snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

// SortSnapshots orders snapshots by (pool_id ASC, timestamp ASC). The sort
// is stable so records sharing a timestamp keep their source order.
func SortSnapshots(snaps []*domain.Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].PoolID != snaps[j].PoolID {
			return snaps[i].PoolID < snaps[j].PoolID
		}
		return snaps[i].TimestampMs < snaps[j].TimestampMs
	})
}

func floatField(record map[string]any, key string) *float64 {
	if v, ok := asFloat(record[key]); ok {
		return &v
	}
	return nil
}

func intField(record map[string]any, key string) *int64 {
	if v, ok := asFloat(record[key]); ok {
		n := int64(v)
		return &n
	}
	return nil
}
