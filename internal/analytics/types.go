package analytics

import "time"

// =============================================================================
// Result Types
// =============================================================================

// AlignedPair holds two return series restricted to their common dates
// Invariant: all three columns have identical length and ordering
type AlignedPair struct {
	Dates     []time.Time
	Portfolio []float64
	Benchmark []float64
}

// Len returns the overlap size
func (p *AlignedPair) Len() int {
	return len(p.Dates)
}

// ComparisonResult holds benchmark-relative performance metrics
// 부호/단위 규약: 수익률은 일별 소수, annualized 지표는 √252/×252 변환
type ComparisonResult struct {
	PortfolioSharpe           float64 `json:"portfolio_sharpe"`
	BenchmarkSharpe           float64 `json:"benchmark_sharpe"`
	Beta                      float64 `json:"beta"`
	Alpha                     float64 `json:"alpha"`
	InformationRatio          float64 `json:"information_ratio"`
	TrackingError             float64 `json:"tracking_error"`
	Correlation               float64 `json:"correlation"`
	DataPoints                int     `json:"data_points"`
	PortfolioCumulativeReturn float64 `json:"portfolio_cumulative_return"`
	BenchmarkCumulativeReturn float64 `json:"benchmark_cumulative_return"`

	TimeSeries ComparisonTimeSeries `json:"time_series"`
}

// ComparisonTimeSeries carries per-date cumulative returns for charting
type ComparisonTimeSeries struct {
	Dates               []string  `json:"dates"`
	PortfolioCumulative []float64 `json:"portfolio_cumulative"`
	BenchmarkCumulative []float64 `json:"benchmark_cumulative"`
}

// RollingMetrics holds windowed metric time series
// Only dates with a full trailing window and a defined rolling Sharpe appear
type RollingMetrics struct {
	Dates             []string  `json:"dates"`
	RollingSharpe     []float64 `json:"rolling_sharpe"`
	RollingVolatility []float64 `json:"rolling_volatility"`
	RollingReturn     []float64 `json:"rolling_return"`
}

// Histogram holds equal-width bin centers and per-bin counts
type Histogram struct {
	Bins   []float64 `json:"bins"`
	Counts []int     `json:"counts"`
}

// DistributionStats holds return-distribution statistics
// Statistics and Percentiles are empty maps when fewer than 2 valid
// observations exist
type DistributionStats struct {
	Histogram   Histogram          `json:"histogram"`
	Statistics  map[string]float64 `json:"statistics"`
	Percentiles map[string]float64 `json:"percentiles"`
}

// RiskMetricsResult is the fixed-shape portfolio risk payload
// VaR/CVaR follow the percentile sign convention: a loss is negative
type RiskMetricsResult struct {
	VaR        float64 `json:"var"`
	CVaR       float64 `json:"cvar"`
	Volatility float64 `json:"volatility"`
	Beta       float64 `json:"beta"`
	Alpha      float64 `json:"alpha"`
}
