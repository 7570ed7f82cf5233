package ingestion

import (
	"context"
	"errors"
	"log"
	"time"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/normalization"
	"solana-pool-lab/internal/observability"
	"solana-pool-lab/internal/solana"
	"solana-pool-lab/internal/storage"
)

// Runner consumes raw snapshot records from a source, normalizes them and
// persists them to a snapshot store in per-pool batches.
type Runner struct {
	source        SnapshotSource
	store         storage.SnapshotStore
	flushInterval time.Duration
	batchSize     int
	logger        *log.Logger

	// Records buffered per pool between flushes.
	buffer   map[string][]*domain.Snapshot
	buffered int

	// Counters for the final report.
	accepted   int
	rejected   int
	duplicates int
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Source        SnapshotSource
	Store         storage.SnapshotStore
	FlushInterval time.Duration // Default: 5s
	BatchSize     int           // Default: 500 records across all pools
	Logger        *log.Logger
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	flushInterval := opts.FlushInterval
	if flushInterval == 0 {
		flushInterval = 5 * time.Second
	}

	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = 500
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		source:        opts.Source,
		store:         opts.Store,
		flushInterval: flushInterval,
		batchSize:     batchSize,
		logger:        logger,
		buffer:        make(map[string][]*domain.Snapshot),
	}
}

// Run consumes the source until it is exhausted or the context is
// cancelled, flushing buffered snapshots periodically and once at the end.
func (r *Runner) Run(ctx context.Context) error {
	records, err := r.source.Subscribe(ctx)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.flush(context.Background())
			r.report()
			return ctx.Err()
		case <-ticker.C:
			r.flush(ctx)
		case record, ok := <-records:
			if !ok {
				r.flush(ctx)
				r.report()
				return nil
			}
			r.ingest(ctx, record)
		}
	}
}

// ingest normalizes and buffers one record. Records that fail normalization
// or address validation are counted and dropped; they never stop the run.
func (r *Runner) ingest(ctx context.Context, record RawRecord) {
	snap, err := normalization.NormalizeRecord(record)
	if err != nil {
		r.rejected++
		observability.RecordSnapshotRejected("malformed")
		r.logger.Printf("rejecting record: %v", err)
		return
	}

	if err := solana.ValidateAddress(snap.PoolID); err != nil {
		r.rejected++
		observability.RecordSnapshotRejected("bad_address")
		r.logger.Printf("rejecting record with bad pool address: %v", err)
		return
	}

	r.buffer[snap.PoolID] = append(r.buffer[snap.PoolID], snap)
	r.buffered++

	if r.buffered >= r.batchSize {
		r.flush(ctx)
	}
}

// flush writes each pool's buffered snapshots. A duplicate batch is counted
// and dropped; the collector re-sends snapshots after reconnects, so
// duplicates are expected, not fatal. Any other store error keeps the
// pool's batch buffered for the next flush.
func (r *Runner) flush(ctx context.Context) {
	start := time.Now()
	for poolID, snaps := range r.buffer {
		if len(snaps) == 0 {
			delete(r.buffer, poolID)
			continue
		}

		err := r.store.InsertBulk(ctx, snaps)
		switch {
		case err == nil:
			r.accepted += len(snaps)
			observability.RecordSnapshotAccepted(len(snaps))
		case errors.Is(err, storage.ErrDuplicateKey):
			r.duplicates += len(snaps)
			observability.RecordSnapshotDuplicated(len(snaps))
		default:
			r.logger.Printf("flush pool %s failed, retrying next flush: %v", poolID, err)
			continue
		}

		delete(r.buffer, poolID)
	}

	r.buffered = 0
	for _, snaps := range r.buffer {
		r.buffered += len(snaps)
	}
	observability.DefaultMetrics.FlushLatency.Observe(time.Since(start).Seconds())
}

func (r *Runner) report() {
	if r.buffered > 0 {
		r.logger.Printf("ingestion stopping with %d unflushed snapshots", r.buffered)
	}
	r.logger.Printf("ingestion done: accepted=%d rejected=%d duplicates=%d",
		r.accepted, r.rejected, r.duplicates)
}
