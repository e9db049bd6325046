package analytics

import (
	"fmt"

	"github.com/wonhee/folio/internal/timeseries"
)

// MinOverlap is the minimum intersection size required for ratio/beta work
const MinOverlap = 10

// InsufficientOverlapError signals an aligned pair below the minimum
// overlap threshold. It carries the actual count so callers can render a
// defined "not enough data" result instead of attempting division.
type InsufficientOverlapError struct {
	DataPoints int
}

func (e *InsufficientOverlapError) Error() string {
	return fmt.Sprintf("insufficient overlapping data points: %d", e.DataPoints)
}

// AlignReturns intersects portfolio and benchmark return series on date,
// drops not-a-number rows, and enforces the minimum-overlap policy
func AlignReturns(portfolio, benchmark *timeseries.Series) (*AlignedPair, error) {
	dates, pv, bv := timeseries.Align(portfolio, benchmark)

	if len(dates) < MinOverlap {
		return nil, &InsufficientOverlapError{DataPoints: len(dates)}
	}

	return &AlignedPair{
		Dates:     dates,
		Portfolio: pv,
		Benchmark: bv,
	}, nil
}
