// Command benchmarks pulls daily index levels for a set of asset and
// benchmark indices, aligns them into one panel, and writes the panel
// CSV plus performance/risk charts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"blpcli/internal/analytics"
	"blpcli/internal/config"
	"blpcli/internal/exporter"
	"blpcli/internal/infrastructure"
	"blpcli/internal/refdata"
)

const (
	fieldPrice       = "PX_LAST"
	fieldTotalReturn = "TOT_RETURN_INDEX_NET_DVDS"

	defaultTickers    = "GSOX=GSOX Index,RGUSTSC=RGUSTSC Index,SPX=SPX Index,MXWO=MXWO Index"
	defaultBenchmarks = "SPX,MXWO"
)

// pullSpec is the resolved ticker universe and window settings for one
// run. Tickers not named as benchmarks are the assets whose excess
// return, correlation, and beta get computed against each benchmark.
type pullSpec struct {
	order   []string          // short names in pull order
	tickers map[string]string // short name -> vendor security
	assets  []string
	benches []string
	retWin  int
	riskWin int
}

func main() {
	tickersFlag := flag.String("tickers", defaultTickers, "comma-separated SHORT=SECURITY pairs to pull")
	benchFlag := flag.String("benchmarks", defaultBenchmarks, "comma-separated short names treated as benchmarks")
	retWin := flag.Int("roll-ret-win", analytics.ReturnWindow, "rolling excess-return window in trading days")
	riskWin := flag.Int("roll-risk-win", analytics.RiskWindow, "rolling correlation/beta window in trading days")
	start := flag.String("start", "2015-01-01", "start date (YYYY-MM-DD)")
	end := flag.String("end", time.Now().Format("2006-01-02"), "end date (YYYY-MM-DD)")
	totalReturn := flag.Bool("total-return", false, "pull total-return index levels, falling back to PX_LAST per ticker")
	host := flag.String("host", "", "gateway host (overrides config)")
	port := flag.Int("port", 0, "gateway port (overrides config)")
	outCSV := flag.String("out", "", "output csv path (defaults to data/reports/combined.csv)")
	chartsDir := flag.String("charts-dir", "", "chart output directory (defaults to data/charts)")
	flag.Parse()

	_ = godotenv.Load()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if *outCSV == "" {
		*outCSV = paths.CombinedCSV
	}
	if *chartsDir == "" {
		*chartsDir = paths.ChartsDir
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("benchmarks.log")
	}
	if *host != "" {
		cfg.Gateway.Host = *host
	}
	if *port != 0 {
		cfg.Gateway.Port = *port
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	ctx, traceID := infrastructure.NewRunContext(context.Background())
	logger = logger.With(slog.String("tool", "benchmarks"))

	spec, err := newPullSpec(*tickersFlag, *benchFlag, *retWin, *riskWin)
	if err != nil {
		logger.Error("Invalid ticker selection", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Starting benchmark comparison pull",
		slog.String("trace_id", traceID),
		slog.String("start", *start),
		slog.String("end", *end),
		slog.String("assets", strings.Join(spec.assets, ",")),
		slog.String("benchmarks", strings.Join(spec.benches, ",")),
		slog.Bool("total_return", *totalReturn),
		slog.String("output_csv", *outCSV))

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		logger.Error("Invalid start date", slog.String("start", *start), slog.String("error", err.Error()))
		os.Exit(1)
	}
	endDate, err := time.Parse("2006-01-02", *end)
	if err != nil {
		logger.Error("Invalid end date", slog.String("end", *end), slog.String("error", err.Error()))
		os.Exit(1)
	}

	client := refdata.NewClient(cfg.Gateway,
		refdata.WithLogger(logger),
		refdata.WithPace(cfg.Pull.Pace),
		refdata.WithRetries(cfg.Gateway.MaxRetries, cfg.Gateway.RetryBackoff))

	if err := run(ctx, client, cfg, logger, *outCSV, *chartsDir, spec, startDate, endDate, *totalReturn); err != nil {
		logger.ErrorContext(ctx, "Benchmark comparison failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newPullSpec parses the ticker and benchmark flags into a validated
// pull plan.
func newPullSpec(tickersFlag, benchFlag string, retWin, riskWin int) (pullSpec, error) {
	order, m, err := parseTickerList(tickersFlag)
	if err != nil {
		return pullSpec{}, err
	}

	benchSet := make(map[string]bool)
	var benches []string
	for _, b := range strings.Split(benchFlag, ",") {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if _, ok := m[b]; !ok {
			return pullSpec{}, fmt.Errorf("benchmark %q is not in the ticker list", b)
		}
		if !benchSet[b] {
			benchSet[b] = true
			benches = append(benches, b)
		}
	}
	if len(benches) == 0 {
		return pullSpec{}, fmt.Errorf("no benchmarks given")
	}

	var assets []string
	for _, short := range order {
		if !benchSet[short] {
			assets = append(assets, short)
		}
	}
	if len(assets) == 0 {
		return pullSpec{}, fmt.Errorf("every ticker is a benchmark; nothing to compare")
	}

	if retWin < 2 || riskWin < 2 {
		return pullSpec{}, fmt.Errorf("rolling windows must cover at least 2 observations")
	}

	return pullSpec{
		order:   order,
		tickers: m,
		assets:  assets,
		benches: benches,
		retWin:  retWin,
		riskWin: riskWin,
	}, nil
}

// parseTickerList parses comma-separated SHORT=SECURITY pairs,
// preserving order.
func parseTickerList(s string) ([]string, map[string]string, error) {
	var order []string
	m := make(map[string]string)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		short, security, ok := strings.Cut(entry, "=")
		short, security = strings.TrimSpace(short), strings.TrimSpace(security)
		if !ok || short == "" || security == "" {
			return nil, nil, fmt.Errorf("malformed ticker entry %q, want SHORT=SECURITY", entry)
		}
		if _, dup := m[short]; dup {
			return nil, nil, fmt.Errorf("duplicate ticker short name %q", short)
		}
		order = append(order, short)
		m[short] = security
	}
	if len(order) == 0 {
		return nil, nil, fmt.Errorf("no tickers given")
	}
	return order, m, nil
}

func run(ctx context.Context, client *refdata.Client, cfg *config.Config, logger *slog.Logger,
	outCSV, chartsDir string, spec pullSpec, start, end time.Time, totalReturn bool) error {

	histories, err := pullLevels(ctx, client, cfg, logger, spec, start, end, totalReturn)
	if err != nil {
		return err
	}

	names := make(map[string]string, len(spec.tickers))
	for short, security := range spec.tickers {
		names[security] = short
	}

	panel, skipped, err := analytics.FromHistories(histories, names, fieldTotalReturn, fieldPrice)
	if err != nil {
		return err
	}
	for _, sec := range skipped {
		logger.WarnContext(ctx, "No data returned for security, skipping", slog.String("security", sec))
	}

	aligned := panel.Align()
	logger.InfoContext(ctx, "Aligned panel",
		slog.Int("rows", aligned.Len()),
		slog.String("columns", strings.Join(aligned.Columns(), ",")))

	csvWriter := exporter.NewCSVWriter()
	if err := csvWriter.WritePanelCSV(outCSV, aligned); err != nil {
		return fmt.Errorf("failed to write panel csv: %w", err)
	}

	if err := renderCharts(logger, chartsDir, aligned, spec); err != nil {
		return err
	}

	fmt.Println("Done. Outputs:")
	fmt.Printf("- %s\n", outCSV)
	for _, name := range chartFiles {
		fmt.Printf("- %s/%s\n", chartsDir, name)
	}
	return nil
}

// pullLevels fetches daily levels for the configured indices. When
// total return is requested, tickers with no usable total-return series
// are re-pulled with the price field.
func pullLevels(ctx context.Context, client *refdata.Client, cfg *config.Config, logger *slog.Logger,
	spec pullSpec, start, end time.Time, totalReturn bool) ([]refdata.SecurityHistory, error) {

	securities := make([]string, 0, len(spec.order))
	for _, short := range spec.order {
		securities = append(securities, spec.tickers[short])
	}

	field := fieldPrice
	if totalReturn {
		field = fieldTotalReturn
	}

	histories, err := client.HistoricalData(ctx, historicalRequest(cfg, securities, field, start, end))
	if err != nil {
		return nil, fmt.Errorf("historical pull failed: %w", err)
	}

	if !totalReturn {
		return histories, nil
	}

	var fallback []string
	for _, h := range histories {
		if h.Empty() {
			fallback = append(fallback, h.Security)
		}
	}
	if len(fallback) == 0 {
		return histories, nil
	}

	logger.InfoContext(ctx, "Total-return series missing, re-pulling price field",
		slog.String("securities", strings.Join(fallback, ",")))

	refetched, err := client.HistoricalData(ctx, historicalRequest(cfg, fallback, fieldPrice, start, end))
	if err != nil {
		return nil, fmt.Errorf("price fallback pull failed: %w", err)
	}

	bySecurity := make(map[string]refdata.SecurityHistory, len(refetched))
	for _, h := range refetched {
		bySecurity[h.Security] = h
	}
	for i, h := range histories {
		if replacement, ok := bySecurity[h.Security]; ok {
			histories[i] = replacement
		}
	}
	return histories, nil
}

func historicalRequest(cfg *config.Config, securities []string, field string, start, end time.Time) refdata.HistoricalRequest {
	return refdata.HistoricalRequest{
		Securities:     securities,
		Fields:         []string{field},
		Start:          start,
		End:            end,
		Periodicity:    refdata.PeriodicityDaily,
		MaxDataPoints:  cfg.Pull.MaxDataPoints,
		AdjustSplits:   true,
		AdjustAbnormal: true,
		AdjustNormal:   true,
	}
}

var chartFiles = []string{
	"01_rebased_performance.png",
	"02_rolling_excess_return.png",
	"03_rolling_correlation.png",
	"04_rolling_beta.png",
	"05_drawdowns.png",
}

// renderCharts writes the five standard charts from the aligned panel.
func renderCharts(logger *slog.Logger, chartsDir string, aligned *analytics.Panel, spec pullSpec) error {
	renderer := exporter.NewChartRenderer(logger)

	rebased := aligned.Rebase(100)
	title := "Rebased Performance"
	if rebased.Len() > 0 {
		title = fmt.Sprintf("Rebased Performance (100 = %s)", rebased.Dates[0].Format("2006-01-02"))
	}
	if err := renderer.RenderPanel(chartPath(chartsDir, chartFiles[0]), rebased, exporter.ChartOptions{
		Title: title,
	}); err != nil {
		return err
	}

	rets := aligned.Returns()

	excess, corr, beta := pairwiseMetrics(rets, spec)

	zero, one := 0.0, 1.0
	if err := renderer.RenderPanel(chartPath(chartsDir, chartFiles[1]), excess, exporter.ChartOptions{
		Title:         fmt.Sprintf("Rolling %d-Day Excess Return (Asset minus Benchmark)", spec.retWin),
		ReferenceLine: &zero,
		PercentAxis:   true,
	}); err != nil {
		return err
	}
	if err := renderer.RenderPanel(chartPath(chartsDir, chartFiles[2]), corr, exporter.ChartOptions{
		Title:         fmt.Sprintf("Rolling %d-Day Correlation", spec.riskWin),
		ReferenceLine: &zero,
	}); err != nil {
		return err
	}
	if err := renderer.RenderPanel(chartPath(chartsDir, chartFiles[3]), beta, exporter.ChartOptions{
		Title:         fmt.Sprintf("Rolling %d-Day Beta", spec.riskWin),
		ReferenceLine: &one,
	}); err != nil {
		return err
	}

	dd := analytics.NewPanel(rebased.Dates)
	for _, col := range rebased.Columns() {
		if err := dd.AddSeries(col, analytics.Drawdown(rebased.Column(col))); err != nil {
			return err
		}
	}
	if err := renderer.RenderPanel(chartPath(chartsDir, chartFiles[4]), dd, exporter.ChartOptions{
		Title:         "Drawdowns from Peak",
		ReferenceLine: &zero,
		PercentAxis:   true,
	}); err != nil {
		return err
	}
	return nil
}

// pairwiseMetrics computes rolling excess return, correlation, and beta
// panels for each asset against each benchmark present in the returns.
func pairwiseMetrics(rets *analytics.Panel, spec pullSpec) (excess, corr, beta *analytics.Panel) {
	excess = analytics.NewPanel(rets.Dates)
	corr = analytics.NewPanel(rets.Dates)
	beta = analytics.NewPanel(rets.Dates)

	rollRet := make(map[string][]float64)
	for _, col := range rets.Columns() {
		rollRet[col] = analytics.RollingReturn(rets.Column(col), spec.retWin)
	}

	for _, asset := range spec.assets {
		if rets.Column(asset) == nil {
			continue
		}
		for _, bench := range spec.benches {
			if rets.Column(bench) == nil {
				continue
			}
			excess.AddSeries(fmt.Sprintf("%s - %s", asset, bench),
				analytics.Sub(rollRet[asset], rollRet[bench]))
			corr.AddSeries(fmt.Sprintf("Corr(%s,%s)", asset, bench),
				analytics.RollingCorrelation(rets.Column(asset), rets.Column(bench), spec.riskWin))
			beta.AddSeries(fmt.Sprintf("Beta(%s,%s)", asset, bench),
				analytics.RollingBeta(rets.Column(asset), rets.Column(bench), spec.riskWin))
		}
	}
	return excess, corr, beta
}

func chartPath(dir, name string) string {
	return filepath.Join(dir, name)
}
