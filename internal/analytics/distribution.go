package analytics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/wonhee/folio/internal/timeseries"
)

// DefaultBins is the standard histogram bin count
const DefaultBins = 50

// distributionPercentiles are the fixed percentile points of the table
var distributionPercentiles = []float64{1, 5, 25, 50, 75, 95, 99}

// Distribution computes histogram, moments, VaR/CVaR and a percentile
// table from a single return series.
//
// Not-a-number entries are dropped first; fewer than 2 valid
// observations yield an all-empty structure rather than a failure.
func Distribution(series *timeseries.Series, bins int) *DistributionStats {
	if bins <= 0 {
		bins = DefaultBins
	}

	clean := series.DropNaN()
	values := clean.Values()

	if len(values) < 2 {
		return &DistributionStats{
			Histogram:   Histogram{Bins: []float64{}, Counts: []int{}},
			Statistics:  map[string]float64{},
			Percentiles: map[string]float64{},
		}
	}

	stats := map[string]float64{
		"mean": Mean(values),
		"std":  StdDev(values),
	}

	// Higher moments need enough observations to be meaningful
	stats["skewness"] = 0
	if len(values) > 2 {
		stats["skewness"] = sanitize(stat.Skew(values, nil))
	}
	stats["kurtosis"] = 0
	if len(values) > 3 {
		stats["kurtosis"] = sanitize(stat.ExKurtosis(values, nil))
	}

	// VaR and CVaR at 95% confidence
	var95 := Percentile(values, 5)
	stats["var_95"] = var95
	stats["cvar_95"] = tailMean(values, var95, var95)

	min, max := values[0], values[0]
	var positive, negative int
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		if v > 0 {
			positive++
		} else if v < 0 {
			negative++
		}
	}
	stats["min"] = min
	stats["max"] = max
	stats["positive_days"] = float64(positive)
	stats["negative_days"] = float64(negative)
	stats["total_days"] = float64(len(values))

	percentiles := make(map[string]float64, len(distributionPercentiles))
	for _, p := range distributionPercentiles {
		percentiles[fmt.Sprintf("p%d", int(p))] = Percentile(values, p)
	}

	return &DistributionStats{
		Histogram:   histogram(values, min, max, bins),
		Statistics:  stats,
		Percentiles: percentiles,
	}
}

// histogram builds equal-width bins over [min, max] with midpoint centers.
// A degenerate range (all values equal) is widened by ±0.5 around the value.
func histogram(values []float64, min, max float64, bins int) Histogram {
	if min == max {
		min -= 0.5
		max += 0.5
	}

	width := (max - min) / float64(bins)

	h := Histogram{
		Bins:   make([]float64, bins),
		Counts: make([]int, bins),
	}
	for i := 0; i < bins; i++ {
		h.Bins[i] = min + width*(float64(i)+0.5)
	}

	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			// Right edge of the last bin is inclusive
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		h.Counts[idx]++
	}

	return h
}
