package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// 통계 유틸리티
// All moments use the sample (n-1) convention via gonum/stat
// =============================================================================

// TradingDays is the annualization basis (trading-day convention)
const TradingDays = 252

// annFactor converts daily volatility to yearly scale
var annFactor = math.Sqrt(TradingDays)

// Mean 평균 계산
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// StdDev 표본 표준편차 계산 (n-1)
// A series of length 0 or 1 has no defined standard deviation
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// Sharpe 연환산 샤프 비율: √252 · mean / std
// Defined as 0 when std is 0 (never divide by zero)
func Sharpe(values []float64) float64 {
	sd := StdDev(values)
	if sd == 0 {
		return 0
	}
	return annFactor * Mean(values) / sd
}

// Percentile 선형 보간 백분위수 계산
// p is in [0, 100]; index position = p/100 · (n-1)
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	idx := p / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	// 선형 보간
	weight := idx - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// tailMean averages all values at or below the threshold
// fallback is returned when the tail is empty
func tailMean(values []float64, threshold, fallback float64) float64 {
	var sum float64
	var count int
	for _, v := range values {
		if v <= threshold {
			sum += v
			count++
		}
	}
	if count == 0 {
		return fallback
	}
	return sum / float64(count)
}

// cumulativeProduct computes prod(1+r_i) - 1
func cumulativeProduct(returns []float64) float64 {
	cum := 1.0
	for _, r := range returns {
		cum *= 1.0 + r
	}
	return cum - 1.0
}

// sanitize coerces NaN/Inf to 0 so results stay JSON-encodable
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
