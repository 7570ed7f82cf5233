package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"solana-pool-lab/internal/domain"
	"solana-pool-lab/internal/reporting"
	"solana-pool-lab/internal/storage/migrations"
	pgstore "solana-pool-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	strategyID := flag.String("strategy-id", "", "Strategy ID to report on (default: the built-in exit parameters)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (required)")
	outputDir := flag.String("output-dir", "reports", "Output directory for generated files")
	migrate := flag.Bool("migrate", false, "Run PostgreSQL migrations before reporting")
	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}
	if *strategyID == "" {
		*strategyID = domain.DefaultSellConfig().ID()
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	if *migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("run migrations: %v", err)
		}
	}

	generator := reporting.NewGenerator(
		pgstore.NewTradeResultStore(pool),
		pgstore.NewSummaryStore(pool),
	)

	report, err := generator.Generate(ctx, *strategyID)
	if err != nil {
		logger.Fatalf("generate report: %v", err)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatalf("create output directory: %v", err)
	}

	mdPath := filepath.Join(*outputDir, "REPORT.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		logger.Fatalf("write %s: %v", mdPath, err)
	}

	csvPath := filepath.Join(*outputDir, "TRADES.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.Trades)), 0o644); err != nil {
		logger.Fatalf("write %s: %v", csvPath, err)
	}

	fmt.Println("Report generated successfully:")
	fmt.Printf("  - %s\n", mdPath)
	fmt.Printf("  - %s\n", csvPath)
}
