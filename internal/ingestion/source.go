package ingestion

import "context"

// RawRecord is one upstream snapshot record before normalization. Field
// naming and nesting follow whatever the collector produced.
type RawRecord map[string]any

// SnapshotSource provides raw snapshot records from an external collector.
type SnapshotSource interface {
	// Subscribe returns a channel of raw records. The channel is closed when
	// the context is cancelled, the source is exhausted, or a fatal error
	// occurs.
	Subscribe(ctx context.Context) (<-chan RawRecord, error)
}
