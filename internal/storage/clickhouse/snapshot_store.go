package clickhouse

import (
	"context"
	"fmt"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

const snapshotColumns = `
	pool_id, timestamp_ms, market_cap, current_price, holders_count, time_from_start_sec,
	price_change_percent,
	market_cap_change_5s, market_cap_change_10s, market_cap_change_30s, market_cap_change_60s,
	ma_market_cap_10s, ma_market_cap_30s, ma_market_cap_60s,
	holder_delta_5s, holder_delta_10s, holder_delta_30s, holder_delta_60s,
	buy_volume_5s, buy_volume_10s, net_volume_5s, net_volume_10s,
	large_buy_5s, large_buy_10s, big_buy_5s, big_buy_10s, super_buy_5s, super_buy_10s
`

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate
// (pool_id, timestamp_ms). MergeTree does not enforce uniqueness, so the
// duplicate check happens here before the batch is sent.
func (s *SnapshotStore) InsertBulk(ctx context.Context, snaps []*domain.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	type key struct {
		poolID string
		tsMs   int64
	}
	seen := make(map[key]struct{}, len(snaps))
	for _, snap := range snaps {
		if snap == nil || snap.PoolID == "" {
			return storage.ErrInvalidInput
		}
		k := key{snap.PoolID, snap.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, snap := range snaps {
		exists, err := s.exists(ctx, snap.PoolID, snap.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO pool_snapshots (`+snapshotColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snaps {
		err = batch.Append(
			snap.PoolID, uint64(snap.TimestampMs), snap.MarketCap, snap.Price,
			uint32(snap.HoldersCount), uint32(snap.TimeFromStartSec),
			snap.PriceChangePercent,
			snap.MarketCapChange5s, snap.MarketCapChange10s, snap.MarketCapChange30s, snap.MarketCapChange60s,
			snap.MAMarketCap10s, snap.MAMarketCap30s, snap.MAMarketCap60s,
			int64PtrToInt32(snap.HolderDelta5s), int64PtrToInt32(snap.HolderDelta10s),
			int64PtrToInt32(snap.HolderDelta30s), int64PtrToInt32(snap.HolderDelta60s),
			snap.BuyVolume5s, snap.BuyVolume10s, snap.NetVolume5s, snap.NetVolume10s,
			int64PtrToInt32(snap.LargeBuy5s), int64PtrToInt32(snap.LargeBuy10s),
			int64PtrToInt32(snap.BigBuy5s), int64PtrToInt32(snap.BigBuy10s),
			int64PtrToInt32(snap.SuperBuy5s), int64PtrToInt32(snap.SuperBuy10s),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByPoolID retrieves all snapshots for a pool, ordered by timestamp ASC.
func (s *SnapshotStore) GetByPoolID(ctx context.Context, poolID string) ([]*domain.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM pool_snapshots
		WHERE pool_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("query by pool id: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetByTimeRange retrieves snapshots for a pool within [start, end] (inclusive).
func (s *SnapshotStore) GetByTimeRange(ctx context.Context, poolID string, start, end int64) ([]*domain.Snapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM pool_snapshots
		WHERE pool_id = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, poolID, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// ListPoolIDs returns the distinct pool ids present, sorted ASC.
func (s *SnapshotStore) ListPoolIDs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT pool_id FROM pool_snapshots ORDER BY pool_id ASC`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pool ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pool id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool ids: %w", err)
	}
	return ids, nil
}

// exists checks if a snapshot with the given key exists.
func (s *SnapshotStore) exists(ctx context.Context, poolID string, timestampMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM pool_snapshots
		WHERE pool_id = ? AND timestamp_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, poolID, uint64(timestampMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanSnapshots scans multiple rows.
func scanSnapshots(rows chRows) ([]*domain.Snapshot, error) {
	var snaps []*domain.Snapshot

	for rows.Next() {
		var s domain.Snapshot
		var timestampMs uint64
		var holdersCount, timeFromStart uint32
		var holderDelta5s, holderDelta10s, holderDelta30s, holderDelta60s *int32
		var largeBuy5s, largeBuy10s, bigBuy5s, bigBuy10s, superBuy5s, superBuy10s *int32

		err := rows.Scan(
			&s.PoolID, &timestampMs, &s.MarketCap, &s.Price, &holdersCount, &timeFromStart,
			&s.PriceChangePercent,
			&s.MarketCapChange5s, &s.MarketCapChange10s, &s.MarketCapChange30s, &s.MarketCapChange60s,
			&s.MAMarketCap10s, &s.MAMarketCap30s, &s.MAMarketCap60s,
			&holderDelta5s, &holderDelta10s, &holderDelta30s, &holderDelta60s,
			&s.BuyVolume5s, &s.BuyVolume10s, &s.NetVolume5s, &s.NetVolume10s,
			&largeBuy5s, &largeBuy10s, &bigBuy5s, &bigBuy10s, &superBuy5s, &superBuy10s,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		s.TimestampMs = int64(timestampMs)
		s.HoldersCount = int64(holdersCount)
		s.TimeFromStartSec = int64(timeFromStart)
		s.HolderDelta5s = int32PtrToInt64(holderDelta5s)
		s.HolderDelta10s = int32PtrToInt64(holderDelta10s)
		s.HolderDelta30s = int32PtrToInt64(holderDelta30s)
		s.HolderDelta60s = int32PtrToInt64(holderDelta60s)
		s.LargeBuy5s = int32PtrToInt64(largeBuy5s)
		s.LargeBuy10s = int32PtrToInt64(largeBuy10s)
		s.BigBuy5s = int32PtrToInt64(bigBuy5s)
		s.BigBuy10s = int32PtrToInt64(bigBuy10s)
		s.SuperBuy5s = int32PtrToInt64(superBuy5s)
		s.SuperBuy10s = int32PtrToInt64(superBuy10s)

		snaps = append(snaps, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snaps, nil
}

func int64PtrToInt32(v *int64) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}

func int32PtrToInt64(v *int32) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}
