package analytics

import (
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/wonhee/folio/internal/timeseries"
)

// DefaultConfidence is the standard VaR/CVaR confidence level
const DefaultConfidence = 0.95

// riskMinOverlap: beta/alpha need strictly more than this many common dates
const riskMinOverlap = 10

// HistoricalVaR computes Value at Risk by historical simulation:
// the (1-confidence)·100 percentile of the return distribution.
// The result is a loss threshold, typically negative.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return Percentile(returns, (1-confidence)*100)
}

// ParametricVaR computes Value at Risk under a normal-distribution
// assumption: mean + z·std with z the inverse normal CDF at
// (1-confidence). Exposed as a distinct entry point, never blended
// into the historical result.
func ParametricVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - confidence)
	return Mean(returns) + z*StdDev(returns)
}

// ConditionalVaR computes Expected Shortfall: the mean of all returns
// at or below the historical VaR. Falls back to the VaR itself when no
// return satisfies the condition.
func ConditionalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	v := HistoricalVaR(returns, confidence)
	return tailMean(returns, v, v)
}

// RiskMetrics combines VaR/CVaR/volatility with optional beta/alpha
// against a benchmark series.
//
// Empty input returns all-zero fields, no error. Beta/alpha are only
// computed when the date intersection with the benchmark exceeds 10
// points; otherwise both stay 0.
func RiskMetrics(returns *timeseries.Series, confidence float64, benchmark *timeseries.Series) *RiskMetricsResult {
	result := &RiskMetricsResult{}

	values := returns.DropNaN().Values()
	if len(values) == 0 {
		return result
	}

	result.VaR = HistoricalVaR(values, confidence)
	result.CVaR = ConditionalVaR(values, confidence)
	result.Volatility = StdDev(values) * annFactor

	if benchmark == nil || benchmark.IsEmpty() {
		return result
	}

	_, pv, bv := timeseries.Align(returns, benchmark)
	if len(pv) <= riskMinOverlap {
		return result
	}

	benchVar := StdDev(bv)
	benchVar *= benchVar
	if benchVar > 0 {
		result.Beta = stat.Covariance(pv, bv, nil) / benchVar
	}

	// Annualized CAPM residual
	result.Alpha = Mean(pv)*TradingDays - result.Beta*Mean(bv)*TradingDays

	return result
}
