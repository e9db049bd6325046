package commands

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonhee/folio/internal/analytics"
	"github.com/wonhee/folio/internal/benchmark"
	"github.com/wonhee/folio/internal/provider"
	"github.com/wonhee/folio/internal/timeseries"
	"github.com/wonhee/folio/pkg/config"
	"github.com/wonhee/folio/pkg/httputil"
	"github.com/wonhee/folio/pkg/logger"
)

// analyzeCmd runs analytics over a CSV return series without the server
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run analytics over a CSV return series",
	Long: `Compute analytics for a portfolio return series stored as CSV.

The file must contain one "date,return" row per trading day, dates in
YYYY-MM-DD order. A header row is detected and skipped.

Example:
  go run ./cmd/folio analyze --file returns.csv --metric distribution
  go run ./cmd/folio analyze --file returns.csv --metric rolling --window 30
  go run ./cmd/folio analyze --file returns.csv --metric compare`,
	RunE: runAnalyze,
}

var (
	analyzeFile       string
	analyzeMetric     string
	analyzeWindow     int
	analyzeBins       int
	analyzeConfidence float64
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "CSV file with date,return rows (required)")
	analyzeCmd.Flags().StringVar(&analyzeMetric, "metric", "distribution", "metric to compute (compare|rolling|distribution|risk)")
	analyzeCmd.Flags().IntVar(&analyzeWindow, "window", analytics.DefaultRollingWindow, "rolling window size")
	analyzeCmd.Flags().IntVar(&analyzeBins, "bins", analytics.DefaultBins, "histogram bin count")
	analyzeCmd.Flags().Float64Var(&analyzeConfidence, "confidence", analytics.DefaultConfidence, "VaR confidence level")
	analyzeCmd.MarkFlagRequired("file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	series, err := loadReturnCSV(analyzeFile)
	if err != nil {
		return fmt.Errorf("load return series: %w", err)
	}
	if series.IsEmpty() {
		return fmt.Errorf("no return rows in %s", analyzeFile)
	}

	switch analyzeMetric {
	case "distribution":
		return printJSON(analytics.Distribution(series, analyzeBins))

	case "rolling":
		return printJSON(analytics.Rolling(series, analyzeWindow))

	case "risk":
		return printJSON(analytics.RiskMetrics(series, analyzeConfidence, nil))

	case "compare":
		bench, err := fetchBenchmark(cmd.Context(), cfg, log, series)
		if err != nil {
			return err
		}
		pair, err := analytics.AlignReturns(series, bench)
		if err != nil {
			return fmt.Errorf("align with benchmark: %w", err)
		}
		return printJSON(analytics.Compare(pair))

	default:
		return fmt.Errorf("invalid metric %q (valid: compare, rolling, distribution, risk)", analyzeMetric)
	}
}

// fetchBenchmark pulls benchmark returns spanning the portfolio series
func fetchBenchmark(ctx context.Context, cfg *config.Config, log *logger.Logger, series *timeseries.Series) (*timeseries.Series, error) {
	httpClient := httputil.New(log).
		WithRateLimit(cfg.Benchmark.RateLimit, cfg.Benchmark.RateBurst)
	yahooClient := provider.NewYahooClient(httpClient, cfg.Benchmark.ProviderBaseURL, log)

	cache := benchmark.NewCache(cfg.Benchmark.CacheTTL, benchmark.RealClock(), log)
	svc := benchmark.NewService(yahooClient, cache, benchmark.RealClock(), log)

	start := series.At(0).Date.AddDate(0, 0, -7)
	last, _ := series.Last()

	bench, err := svc.GetReturns(ctx, cfg.Benchmark.Instrument, start, last.Date, false)
	if err != nil {
		return nil, fmt.Errorf("fetch benchmark: %w", err)
	}
	if bench.IsEmpty() {
		return nil, fmt.Errorf("could not fetch benchmark data for %s", cfg.Benchmark.Instrument)
	}
	return bench, nil
}

// loadReturnCSV reads a date,return CSV into a series
func loadReturnCSV(path string) (*timeseries.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}

	series := timeseries.New()
	for i, record := range records {
		date, err := time.Parse(timeseries.DateLayout, record[0])
		if err != nil {
			// Header row
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("row %d: invalid date %q", i+1, record[0])
		}

		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid return %q", i+1, record[1])
		}

		if err := series.Append(date, value); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	return series, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
