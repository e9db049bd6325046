package analytics

import (
	"github.com/wonhee/folio/internal/timeseries"
)

// DefaultRollingWindow is the standard trailing window in trading days
const DefaultRollingWindow = 30

// Rolling computes windowed Sharpe, volatility and return time series.
//
// A series shorter than the window yields an all-empty result, not an
// error. Windows with zero variance have no defined Sharpe and are
// omitted from the output entirely. This intentionally differs from
// Compare's zero fallback: rolling charts drop undefined points instead
// of plotting artificial zeros.
func Rolling(series *timeseries.Series, window int) *RollingMetrics {
	result := &RollingMetrics{
		Dates:             []string{},
		RollingSharpe:     []float64{},
		RollingVolatility: []float64{},
		RollingReturn:     []float64{},
	}

	if window <= 0 {
		window = DefaultRollingWindow
	}
	if series.Len() < window {
		return result
	}

	values := series.Values()
	dates := series.Dates()

	for i := window - 1; i < len(values); i++ {
		frame := values[i-window+1 : i+1]

		sd := StdDev(frame)
		if sd == 0 {
			// Undefined rolling Sharpe: omit, do not coerce to 0
			continue
		}
		m := Mean(frame)

		result.Dates = append(result.Dates, dates[i].Format(timeseries.DateLayout))
		result.RollingSharpe = append(result.RollingSharpe, annFactor*m/sd)
		result.RollingVolatility = append(result.RollingVolatility, sd*annFactor)
		result.RollingReturn = append(result.RollingReturn, m*TradingDays)
	}

	return result
}
