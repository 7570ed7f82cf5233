package ingestion

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

// FileSource reads raw snapshot records from a JSON-lines export, one
// record per line. Blank lines are skipped.
type FileSource struct {
	path   string
	logger *log.Logger
}

// NewFileSource creates a source reading from the given JSONL file.
func NewFileSource(path string, logger *log.Logger) *FileSource {
	if logger == nil {
		logger = log.Default()
	}
	return &FileSource{path: path, logger: logger}
}

var _ SnapshotSource = (*FileSource)(nil)

// Subscribe streams the file's records. The channel is closed at EOF or on
// context cancellation; a malformed line aborts the stream with the error
// logged, so consumers see a truncated channel rather than bad data.
func (s *FileSource) Subscribe(ctx context.Context) (<-chan RawRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}

	out := make(chan RawRecord, 100)
	go func() {
		defer close(out)
		defer f.Close()

		scanner := bufio.NewScanner(f)
		// Snapshot records with full trade breakdowns run long.
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			var record RawRecord
			if err := json.Unmarshal([]byte(line), &record); err != nil {
				s.logger.Printf("aborting %s: parse line %d: %v", s.path, lineNo, err)
				return
			}

			select {
			case out <- record:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.logger.Printf("aborting %s: read: %v", s.path, err)
		}
	}()

	return out, nil
}

// ReadRecords loads every record from a JSONL file in one call. Used by the
// batch backtest path, which wants the whole pool history up front.
func ReadRecords(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []map[string]any
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", lineNo, err)
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	return records, nil
}
