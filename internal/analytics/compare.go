package analytics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/wonhee/folio/internal/timeseries"
)

// Compare computes benchmark-relative performance metrics from an
// aligned pair. Annualization factor is √252 throughout; every ratio
// with a zero denominator resolves to 0 rather than a division fault.
func Compare(pair *AlignedPair) *ComparisonResult {
	pv := pair.Portfolio
	bv := pair.Benchmark

	result := &ComparisonResult{
		DataPoints: pair.Len(),
	}

	// Sharpe ratios (0 risk-free rate)
	result.PortfolioSharpe = Sharpe(pv)
	result.BenchmarkSharpe = Sharpe(bv)

	// Beta and Alpha (CAPM), sample covariance/variance
	benchVar := StdDev(bv)
	benchVar *= benchVar
	if benchVar > 0 {
		result.Beta = stat.Covariance(pv, bv, nil) / benchVar
	}
	result.Alpha = (Mean(pv) - result.Beta*Mean(bv)) * TradingDays

	// Information ratio over tracking error
	diff := make([]float64, len(pv))
	for i := range pv {
		diff[i] = pv[i] - bv[i]
	}
	result.TrackingError = StdDev(diff) * annFactor
	if result.TrackingError > 0 {
		excess := (Mean(pv) - Mean(bv)) * TradingDays
		result.InformationRatio = excess / result.TrackingError
	}

	// Pearson correlation; degenerate (constant) columns resolve to 0
	result.Correlation = sanitize(stat.Correlation(pv, bv, nil))

	// Cumulative returns, scalar and per-date for charting
	result.TimeSeries = cumulativeSeries(pair)
	if n := len(result.TimeSeries.PortfolioCumulative); n > 0 {
		result.PortfolioCumulativeReturn = result.TimeSeries.PortfolioCumulative[n-1]
		result.BenchmarkCumulativeReturn = result.TimeSeries.BenchmarkCumulative[n-1]
	}

	return result
}

// cumulativeSeries compounds both aligned columns per date
func cumulativeSeries(pair *AlignedPair) ComparisonTimeSeries {
	ts := ComparisonTimeSeries{
		Dates:               make([]string, pair.Len()),
		PortfolioCumulative: make([]float64, pair.Len()),
		BenchmarkCumulative: make([]float64, pair.Len()),
	}

	pcum, bcum := 1.0, 1.0
	for i := range pair.Dates {
		pcum *= 1.0 + pair.Portfolio[i]
		bcum *= 1.0 + pair.Benchmark[i]

		ts.Dates[i] = pair.Dates[i].Format(timeseries.DateLayout)
		ts.PortfolioCumulative[i] = pcum - 1.0
		ts.BenchmarkCumulative[i] = bcum - 1.0
	}
	return ts
}
