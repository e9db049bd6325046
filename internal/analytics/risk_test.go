package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonhee/folio/internal/timeseries"
)

func TestHistoricalVaR(t *testing.T) {
	values := []float64{0.01, -0.02, 0.015, -0.005, 0.03}

	// 95% VaR = 5th percentile
	want := Percentile(values, 5)
	assert.InDelta(t, want, HistoricalVaR(values, 0.95), 1e-12)

	// Loss threshold is negative for a series with a left tail
	assert.Less(t, HistoricalVaR(values, 0.95), 0.0)

	assert.Equal(t, 0.0, HistoricalVaR(nil, 0.95))
}

func TestConditionalVaR(t *testing.T) {
	values := []float64{0.01, -0.02, 0.015, -0.005, 0.03}

	v := HistoricalVaR(values, 0.95)
	cv := ConditionalVaR(values, 0.95)

	// Loss-side monotonicity
	assert.LessOrEqual(t, cv, v)

	// Only -0.02 sits at or below the 5th percentile here
	assert.InDelta(t, -0.02, cv, 1e-12)

	assert.Equal(t, 0.0, ConditionalVaR(nil, 0.95))
}

func TestConditionalVaRFallback(t *testing.T) {
	// Single repeated loss value: tail mean equals VaR itself
	values := []float64{-0.01, -0.01, -0.01}
	v := HistoricalVaR(values, 0.95)
	assert.InDelta(t, v, ConditionalVaR(values, 0.95), 1e-12)
}

func TestParametricVaR(t *testing.T) {
	values := []float64{0.012, -0.008, 0.02, 0.001, -0.015, 0.009, 0.004, -0.002, 0.011, 0.006}

	got := ParametricVaR(values, 0.95)

	// mean + z * std with z = Phi^-1(0.05) ~ -1.6449
	want := Mean(values) - 1.6448536269514729*StdDev(values)
	assert.InDelta(t, want, got, 1e-9)

	// Parametric VaR of a volatile series is below the mean
	assert.Less(t, got, Mean(values))

	assert.Equal(t, 0.0, ParametricVaR(nil, 0.95))
}

func TestRiskMetricsEmptyInput(t *testing.T) {
	result := RiskMetrics(timeseries.New(), 0.95, nil)

	// All fields 0, no error raised
	assert.Equal(t, 0.0, result.VaR)
	assert.Equal(t, 0.0, result.CVaR)
	assert.Equal(t, 0.0, result.Volatility)
	assert.Equal(t, 0.0, result.Beta)
	assert.Equal(t, 0.0, result.Alpha)
}

func TestRiskMetricsWithoutBenchmark(t *testing.T) {
	values := []float64{0.01, -0.02, 0.015, -0.005, 0.03, 0.002, -0.011, 0.007, 0.004, -0.006, 0.013, 0.001}
	series := seriesOf(t, 0, values)

	result := RiskMetrics(series, 0.95, nil)

	assert.InDelta(t, HistoricalVaR(values, 0.95), result.VaR, 1e-12)
	assert.InDelta(t, ConditionalVaR(values, 0.95), result.CVaR, 1e-12)
	assert.InDelta(t, StdDev(values)*math.Sqrt(252), result.Volatility, 1e-12)
	assert.Equal(t, 0.0, result.Beta)
	assert.Equal(t, 0.0, result.Alpha)
}

func TestRiskMetricsWithBenchmark(t *testing.T) {
	values := []float64{0.01, -0.02, 0.015, -0.005, 0.03, 0.002, -0.011, 0.007, 0.004, -0.006, 0.013, 0.001}
	series := seriesOf(t, 0, values)

	// Identical benchmark on the same dates: beta 1, alpha ~0
	benchmark := seriesOf(t, 0, values)

	result := RiskMetrics(series, 0.95, benchmark)

	assert.InDelta(t, 1.0, result.Beta, 1e-9)
	assert.InDelta(t, 0.0, result.Alpha, 1e-9)
}

func TestRiskMetricsInsufficientIntersection(t *testing.T) {
	values := []float64{0.01, -0.02, 0.015, -0.005, 0.03, 0.002, -0.011, 0.007, 0.004, -0.006}
	series := seriesOf(t, 0, values)

	// Exactly 10 common dates: beta/alpha need strictly more than 10
	benchmark := seriesOf(t, 0, values)

	result := RiskMetrics(series, 0.95, benchmark)

	assert.Equal(t, 0.0, result.Beta)
	assert.Equal(t, 0.0, result.Alpha)

	// VaR/volatility still computed from the portfolio alone
	assert.NotEqual(t, 0.0, result.VaR)
	assert.NotEqual(t, 0.0, result.Volatility)
}

func TestRiskMetricsIgnoresNaN(t *testing.T) {
	values := []float64{0.01, -0.02, 0.015, -0.005, 0.03, 0.002, -0.011, 0.007, 0.004, -0.006, 0.013, 0.001}
	clean := seriesOf(t, 0, values)

	// Same values with a NaN row spliced in; metrics must not change
	dirty := seriesOf(t, 0, append(append([]float64{}, values...), math.NaN()))

	want := RiskMetrics(clean, 0.95, nil)
	got := RiskMetrics(dirty, 0.95, nil)

	assert.InDelta(t, want.VaR, got.VaR, 1e-12)
	assert.InDelta(t, want.CVaR, got.CVaR, 1e-12)
	assert.InDelta(t, want.Volatility, got.Volatility, 1e-12)
	assert.False(t, math.IsNaN(got.VaR))
	assert.False(t, math.IsNaN(got.Volatility))
}

func TestRiskMetricsConfidenceLevels(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 0.001 * float64(i-50)
	}
	series := seriesOf(t, 0, values)

	r95 := RiskMetrics(series, 0.95, nil)
	r99 := RiskMetrics(series, 0.99, nil)

	// Higher confidence digs deeper into the loss tail
	assert.Less(t, r99.VaR, r95.VaR)
	assert.LessOrEqual(t, r99.CVaR, r99.VaR)
}
