// Command supplychain pulls both customer and supplier relationship
// tables for a list of issuers and writes the short-form CSVs matching
// the terminal spreadsheet pull (ticker, counterparty, size, amount,
// as-of date).
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
	tickersFlag := flag.String("tickers", "", `comma-separated tickers, e.g. "NVDA US Equity,MSFT US Equity"`)
	tickersFile := flag.String("tickers-file", "", "path to newline-delimited tickers")
	host := flag.String("host", "", "gateway host (overrides config)")
	port := flag.Int("port", 0, "gateway port (overrides config)")
	sumCount := flag.Int("sum-count", 0, "SUPPLY_CHAIN_SUM_COUNT_OVERRIDE (default 20)")
	quantified := flag.String("quantified", "", "QUANTIFIED_OVERRIDE (default Y)")
	supplierSort := flag.String("supplier-sort", "C", "SUP_CHAIN_RELATIONSHIP_SORT_OVR")
	currency := flag.String("currency", "", "EQY_FUND_CRNCY for RELATIONSHIP_AMOUNT (default USD)")
	pace := flag.Duration("pace", 0, "minimum spacing between enrichment calls (default 50ms)")
	outCustomers := flag.String("out-customers", "", "CSV path for customers (defaults to data/reports/customers.csv)")
	outSuppliers := flag.String("out-suppliers", "", "CSV path for suppliers (defaults to data/reports/suppliers.csv)")
	printSample := flag.Bool("print", false, "print 10-row samples of each table")
	flag.Parse()

	_ = godotenv.Load()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if *outCustomers == "" {
		*outCustomers = paths.CustomersCSV
	}
	if *outSuppliers == "" {
		*outSuppliers = paths.SuppliersCSV
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("supplychain.log")
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
	logger = logger.With(slog.String("tool", "supplychain"))

	tickers, err := supplychain.ResolveTickers(*tickersFlag, *tickersFile)
	if err != nil {
		logger.Error("Failed to resolve tickers", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Starting supply-chain pull",
		slog.String("trace_id", traceID),
		slog.Int("tickers", len(tickers)),
		slog.String("customers_csv", *outCustomers),
		slog.String("suppliers_csv", *outSuppliers))

	client := refdata.NewClient(cfg.Gateway,
		refdata.WithLogger(logger),
		refdata.WithPace(cfg.Pull.Pace),
		refdata.WithRetries(cfg.Gateway.MaxRetries, cfg.Gateway.RetryBackoff))
	svc := supplychain.NewService(client, logger)

	started := time.Now()
	writer := exporter.NewCSVWriter()

	type pull struct {
		role supplychain.Role
		out  string
	}
	pulls := []pull{
		{supplychain.RoleCustomer, *outCustomers},
		{supplychain.RoleSupplier, *outSuppliers},
	}

	for _, p := range pulls {
		opts := supplychain.FetchOptions{
			SumCount:   *sumCount,
			Quantified: *quantified,
			Currency:   *currency,
			AmountOnly: true,
		}
		if p.role == supplychain.RoleSupplier {
			opts.SupplierSort = *supplierSort
		}

		rels, err := svc.Fetch(ctx, tickers, p.role, opts)
		if err != nil {
			logger.ErrorContext(ctx, "Pull failed",
				slog.String("role", string(p.role)),
				slog.String("error", err.Error()))
			os.Exit(1)
		}

		if err := writer.WriteParityCSV(p.out, p.role, rels); err != nil {
			logger.ErrorContext(ctx, "Failed to write CSV",
				slog.String("path", p.out),
				slog.String("error", err.Error()))
			os.Exit(1)
		}

		logger.InfoContext(ctx, "Wrote relationship CSV",
			slog.String("role", string(p.role)),
			slog.String("path", p.out),
			slog.Int("rows", len(rels)))

		if *printSample {
			printHead(p.role, rels, 10)
		}
	}

	logger.InfoContext(ctx, "Supply-chain pull complete",
		slog.Duration("elapsed", time.Since(started)))
}

// printHead prints the first n rows of a relationship table.
func printHead(role supplychain.Role, rels []supplychain.Relationship, n int) {
	fmt.Printf("\n== %s (sample) ==\n", role.SheetName())
	headers := exporter.ParityHeaders(role)
	fmt.Printf("%-22s %-32s %-10s %-16s %s\n", headers[0], headers[1], headers[2], headers[3], headers[4])
	for i, rel := range rels {
		if i >= n {
			break
		}
		row := exporter.ParityRow(rel)
		fmt.Printf("%-22s %-32s %-10s %-16s %s\n", row[0], row[1], row[2], row[3], row[4])
	}
}
