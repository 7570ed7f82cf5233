package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"solana-pool-lab/internal/backtest"
	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/ingestion"
	"solana-pool-lab/internal/normalization"
	"solana-pool-lab/internal/storage"
	chstore "solana-pool-lab/internal/storage/clickhouse"
	"solana-pool-lab/internal/storage/memory"
	pgstore "solana-pool-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	poolID := flag.String("pool-id", "", "Pool ID to backtest (required unless --file holds one pool)")
	inputFile := flag.String("file", "", "JSONL snapshot export to backtest instead of stored data")

	// Strategy parameters
	buyConfigPath := flag.String("buy-config", "", "JSON file overriding the default entry parameters")
	sellConfigPath := flag.String("sell-config", "", "JSON file overriding the default exit parameters")

	// Storage
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (trade results)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (snapshots)")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	persistResult := flag.Bool("persist", false, "Persist the trade result to storage")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	buyCfg, err := loadBuyConfig(*buyConfigPath)
	if err != nil {
		logger.Fatalf("load buy config: %v", err)
	}
	sellCfg, err := loadSellConfig(*sellConfigPath)
	if err != nil {
		logger.Fatalf("load sell config: %v", err)
	}

	ctx := context.Background()

	// Create stores
	var snapshotStore storage.SnapshotStore
	var tradeStore storage.TradeResultStore

	switch {
	case *inputFile != "":
		store := memory.NewSnapshotStore()
		loadedPoolID, err := loadSnapshotFile(ctx, store, *inputFile)
		if err != nil {
			logger.Fatalf("load snapshot file: %v", err)
		}
		if *poolID == "" {
			*poolID = loadedPoolID
		}
		snapshotStore = store
	case *clickhouseDSN != "":
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		snapshotStore = chstore.NewSnapshotStore(conn)
	default:
		logger.Fatal("--file or --clickhouse-dsn is required")
	}

	if *poolID == "" {
		logger.Fatal("--pool-id is required")
	}

	if *persistResult {
		if *postgresDSN == "" {
			logger.Fatal("--postgres-dsn is required with --persist")
		}
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		tradeStore = pgstore.NewTradeResultStore(pool)
	}

	runner := backtest.NewRunner(backtest.RunnerOptions{
		Snapshots:  snapshotStore,
		Trades:     tradeStore,
		BuyConfig:  buyCfg,
		SellConfig: sellCfg,
		Logger:     logger,
	})

	logger.Printf("Running backtest: pool=%s strategy=%s", *poolID, sellCfg.ID())

	result, err := runner.RunPool(ctx, *poolID)
	if err != nil {
		logger.Fatalf("backtest failed: %v", err)
	}
	if result == nil {
		logger.Printf("No entry pattern matched for pool %s", *poolID)
		return
	}

	// Output result
	if *outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	} else {
		printTradeResult(result)
	}
}

// loadSnapshotFile normalizes a JSONL export into the store and returns the
// pool id it contains.
func loadSnapshotFile(ctx context.Context, store storage.SnapshotStore, path string) (string, error) {
	records, err := ingestion.ReadRecords(path)
	if err != nil {
		return "", err
	}

	snaps, err := normalization.NormalizeSequence(records)
	if err != nil {
		return "", err
	}
	if len(snaps) == 0 {
		return "", fmt.Errorf("no snapshots in %s", path)
	}

	if err := store.InsertBulk(ctx, snaps); err != nil {
		return "", err
	}
	return snaps[0].PoolID, nil
}

// loadBuyConfig returns the default entry parameters, overridden by the JSON
// file when one is given.
func loadBuyConfig(path string) (domain.BuyConfig, error) {
	cfg := domain.DefaultBuyConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// loadSellConfig returns the default exit parameters, overridden by the JSON
// file when one is given.
func loadSellConfig(path string) (domain.SellConfig, error) {
	cfg := domain.DefaultSellConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// printTradeResult outputs a human-readable trade result.
func printTradeResult(t *domain.TradeResult) {
	fmt.Println()
	fmt.Println("=== Backtest Result ===")
	fmt.Printf("Trade ID:           %s\n", t.TradeID)
	fmt.Printf("Pool ID:            %s\n", t.PoolID)
	fmt.Println()

	fmt.Println("Entry:")
	fmt.Printf("  Time:             %s\n", time.UnixMilli(t.EntryTimeMs).UTC().Format(time.RFC3339))
	fmt.Printf("  Price:            %.6f\n", t.EntryPrice)
	fmt.Printf("  Index:            %d\n", t.EntryIndex)
	fmt.Println()

	fmt.Println("Exit:")
	fmt.Printf("  Time:             %s\n", time.UnixMilli(t.ExitTimeMs).UTC().Format(time.RFC3339))
	fmt.Printf("  Price:            %.6f\n", t.ExitPrice)
	fmt.Printf("  Index:            %d\n", t.ExitIndex)
	fmt.Printf("  Reason:           %s\n", t.ExitReason)
	fmt.Println()

	fmt.Println("Result:")
	fmt.Printf("  Profit Ratio:     %.4f\n", t.ProfitRatio)
	fmt.Printf("  Profit:           %.6f SOL\n", t.ProfitSOL)
	fmt.Printf("  Max Profit Ratio: %.4f\n", t.MaxProfitRatio)
	fmt.Printf("  Duration:         %v\n", time.Duration(t.TradeDurationSec)*time.Second)
	fmt.Printf("  Peak To Exit:     %v\n", time.Duration(t.PeakToExitSec)*time.Second)
}
