package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"solana-pool-lab/internal/backtest"
	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/ingestion"
	"solana-pool-lab/internal/metrics"
	"solana-pool-lab/internal/normalization"
	"solana-pool-lab/internal/reporting"
	"solana-pool-lab/internal/storage"
	chstore "solana-pool-lab/internal/storage/clickhouse"
	"solana-pool-lab/internal/storage/memory"
	pgstore "solana-pool-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	inputDir := flag.String("dir", "", "Directory of JSONL snapshot exports, one pool per file")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (snapshots)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (trade results and summaries)")
	workers := flag.Int("workers", 4, "Number of concurrent pool workers")

	// Strategy parameters
	buyConfigPath := flag.String("buy-config", "", "JSON file overriding the default entry parameters")
	sellConfigPath := flag.String("sell-config", "", "JSON file overriding the default exit parameters")

	// Output
	outputDir := flag.String("output-dir", "reports", "Output directory for generated files")
	persistResults := flag.Bool("persist", false, "Persist trade results and the summary to storage")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)

	buyCfg, err := loadConfig(*buyConfigPath, domain.DefaultBuyConfig())
	if err != nil {
		logger.Fatalf("load buy config: %v", err)
	}
	sellCfg, err := loadConfig(*sellConfigPath, domain.DefaultSellConfig())
	if err != nil {
		logger.Fatalf("load sell config: %v", err)
	}

	ctx := context.Background()

	// Snapshot source
	var snapshotStore storage.SnapshotStore
	switch {
	case *inputDir != "":
		store := memory.NewSnapshotStore()
		pools, err := loadSnapshotDir(ctx, store, *inputDir, logger)
		if err != nil {
			logger.Fatalf("load snapshot directory: %v", err)
		}
		logger.Printf("Loaded %d pools from %s", pools, *inputDir)
		snapshotStore = store
	case *clickhouseDSN != "":
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		snapshotStore = chstore.NewSnapshotStore(conn)
	default:
		logger.Fatal("--dir or --clickhouse-dsn is required")
	}

	// Result sinks
	var tradeStore storage.TradeResultStore
	var summaryStore storage.SummaryStore
	if *persistResults {
		if *postgresDSN == "" {
			logger.Fatal("--postgres-dsn is required with --persist")
		}
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		tradeStore = pgstore.NewTradeResultStore(pool)
		summaryStore = pgstore.NewSummaryStore(pool)
	}

	runner := backtest.NewRunner(backtest.RunnerOptions{
		Snapshots:  snapshotStore,
		Trades:     tradeStore,
		Summaries:  summaryStore,
		BuyConfig:  buyCfg,
		SellConfig: sellCfg,
		Workers:    *workers,
		Logger:     logger,
	})

	strategyID := sellCfg.ID()
	logger.Printf("Running simulation: strategy=%s workers=%d", strategyID, *workers)

	summary, results, err := runner.RunAll(ctx)
	if err != nil {
		logger.Fatalf("simulation failed: %v", err)
	}

	if err := writeReports(*outputDir, strategyID, summary, results); err != nil {
		logger.Fatalf("write reports: %v", err)
	}

	fmt.Printf("Simulation complete: %d trades, win rate %.4f\n", summary.TotalTrades, summary.WinRate)
	fmt.Printf("  - %s/REPORT.md\n", *outputDir)
	fmt.Printf("  - %s/TRADES.csv\n", *outputDir)
}

// loadSnapshotDir normalizes every .jsonl file under dir into the store.
// Files that fail normalization are skipped with a log line.
func loadSnapshotDir(ctx context.Context, store storage.SnapshotStore, dir string, logger *log.Logger) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no .jsonl files in %s", dir)
	}

	loaded := 0
	for _, path := range paths {
		records, err := ingestion.ReadRecords(path)
		if err != nil {
			logger.Printf("skipping %s: %v", path, err)
			continue
		}
		snaps, err := normalization.NormalizeSequence(records)
		if err != nil {
			logger.Printf("skipping %s: %v", path, err)
			continue
		}
		if len(snaps) == 0 {
			continue
		}
		if err := store.InsertBulk(ctx, snaps); err != nil {
			logger.Printf("skipping %s: %v", path, err)
			continue
		}
		loaded++
	}
	if loaded == 0 {
		return 0, fmt.Errorf("no usable pools in %s", dir)
	}
	return loaded, nil
}

// writeReports renders the markdown and CSV outputs.
func writeReports(dir, strategyID string, summary *metrics.Summary, results []*domain.TradeResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	trades := memory.NewTradeResultStore()
	if err := trades.InsertBulk(context.Background(), results); err != nil {
		return err
	}

	summaries := memory.NewSummaryStore()
	if err := summaries.Insert(context.Background(), strategyID, summary); err != nil {
		return err
	}

	report, err := reporting.NewGenerator(trades, summaries).
		Generate(context.Background(), strategyID)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, "REPORT.md"),
		[]byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "TRADES.csv"),
		[]byte(reporting.RenderCSV(report.Trades)), 0o644)
}

// loadConfig returns defaults overridden by the JSON file when one is given.
func loadConfig[T any](path string, defaults T) (T, error) {
	if path == "" {
		return defaults, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults, err
	}
	if err := json.Unmarshal(data, &defaults); err != nil {
		return defaults, fmt.Errorf("parse %s: %w", path, err)
	}
	return defaults, nil
}
