package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-pool-lab/internal/ingestion"
	"solana-pool-lab/internal/observability"
	"solana-pool-lab/internal/storage"
	chstore "solana-pool-lab/internal/storage/clickhouse"
	"solana-pool-lab/internal/storage/memory"
	"solana-pool-lab/internal/storage/migrations"
)

func main() {
	// Parse flags
	inputFile := flag.String("file", "", "JSONL snapshot export to ingest")
	wsEndpoint := flag.String("ws-endpoint", "", "Collector WebSocket endpoint for live ingestion")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage (dry run)")
	migrate := flag.Bool("migrate", false, "Run ClickHouse migrations before ingesting")
	batchSize := flag.Int("batch-size", 500, "Records buffered before a flush")
	flushInterval := flag.Duration("flush-interval", 5*time.Second, "Maximum time between flushes")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags)

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	if *inputFile == "" && *wsEndpoint == "" {
		logger.Fatal("--file or --ws-endpoint is required")
	}
	if *inputFile != "" && *wsEndpoint != "" {
		logger.Fatal("--file and --ws-endpoint are mutually exclusive")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Create store
	var store storage.SnapshotStore = memory.NewSnapshotStore()
	if !*useMemory {
		if *clickhouseDSN == "" {
			logger.Fatal("--clickhouse-dsn is required when not using --use-memory")
		}

		var conn *chstore.Conn
		var err error
		if *migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		} else {
			conn, err = chstore.NewConn(ctx, *clickhouseDSN)
		}
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()

		store = chstore.NewSnapshotStore(conn)
	}

	// Create source
	var source ingestion.SnapshotSource
	if *inputFile != "" {
		source = ingestion.NewFileSource(*inputFile, logger)
		logger.Printf("Ingesting from file %s", *inputFile)
	} else {
		source = ingestion.NewWSSource(*wsEndpoint, nil, logger)
		logger.Printf("Ingesting from %s", *wsEndpoint)
	}

	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Source:        source,
		Store:         store,
		BatchSize:     *batchSize,
		FlushInterval: *flushInterval,
		Logger:        logger,
	})

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("ingestion failed: %v", err)
	}

	logger.Println("Shutdown complete")
}
