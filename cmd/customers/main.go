// Command customers builds an Excel workbook of customer relationships
// for a list of issuers, enriched with per-relationship amounts and
// percentages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"blpcli/internal/config"
	"blpcli/internal/exporter"
	"blpcli/internal/infrastructure"
	"blpcli/internal/refdata"
	"blpcli/internal/supplychain"
)

func main() {
	tickersFlag := flag.String("tickers", "", "comma-separated tickers (default: built-in semiconductor list)")
	tickersFile := flag.String("tickers-file", "", "path to newline-delimited tickers")
	outXLSX := flag.String("out-xlsx", "", "output Excel path (defaults to data/reports/total_customers.xlsx)")
	host := flag.String("host", "", "gateway host (overrides config)")
	port := flag.Int("port", 0, "gateway port (overrides config)")
	sumCount := flag.Int("sum-count-override", 0, "SUPPLY_CHAIN_SUM_COUNT_OVERRIDE (default 20)")
	quantified := flag.String("quantified-override", "", "QUANTIFIED_OVERRIDE (default Y)")
	currency := flag.String("currency", "", "EQY_FUND_CRNCY for RELATIONSHIP_AMOUNT (default USD)")
	pace := flag.Duration("pace", 0, "minimum spacing between enrichment calls (default 50ms)")
	flag.Parse()

	_ = godotenv.Load()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if *outXLSX == "" {
		*outXLSX = paths.CustomersXLSX
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("customers.log")
	}
	if *host != "" {
		cfg.Gateway.Host = *host
	}
	if *port != 0 {
		cfg.Gateway.Port = *port
	}
	if *pace != 0 {
		cfg.Pull.Pace = *pace
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, traceID := infrastructure.NewRunContext(context.Background())
	logger = logger.With(slog.String("tool", "customers"))

	tickers, err := supplychain.ResolveTickers(*tickersFlag, *tickersFile)
	if err != nil {
		logger.Error("Failed to resolve tickers", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Starting customer relationship pull",
		slog.String("trace_id", traceID),
		slog.Int("tickers", len(tickers)),
		slog.String("output", *outXLSX))

	client := refdata.NewClient(cfg.Gateway,
		refdata.WithLogger(logger),
		refdata.WithPace(cfg.Pull.Pace),
		refdata.WithRetries(cfg.Gateway.MaxRetries, cfg.Gateway.RetryBackoff))
	svc := supplychain.NewService(client, logger)

	opts := supplychain.FetchOptions{
		SumCount:   *sumCount,
		Quantified: *quantified,
		Currency:   *currency,
	}

	started := time.Now()
	rels, err := svc.Fetch(ctx, tickers, supplychain.RoleCustomer, opts)
	if err != nil {
		logger.ErrorContext(ctx, "Customer pull failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	writer := exporter.NewExcelWriter(logger)
	if err := writer.WriteRelationships(*outXLSX, supplychain.RoleCustomer, rels); err != nil {
		logger.ErrorContext(ctx, "Failed to write workbook", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Customer pull complete",
		slog.Int("rows", len(rels)),
		slog.Duration("elapsed", time.Since(started)))
	fmt.Printf("Done. Rows written: %d  ->  %s\n", len(rels), *outXLSX)
}
