package analytics

import (
	"math"
	"testing"
)

// variedValues yields n non-constant daily returns
func variedValues(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 0.01 * math.Sin(float64(i))
	}
	return values
}

func TestRollingShorterThanWindow(t *testing.T) {
	series := seriesOf(t, 0, variedValues(29))

	result := Rolling(series, 30)

	// Defined empty state, not an error
	if len(result.Dates) != 0 || len(result.RollingSharpe) != 0 ||
		len(result.RollingVolatility) != 0 || len(result.RollingReturn) != 0 {
		t.Errorf("expected all-empty result, got %d entries", len(result.Dates))
	}

	// Slices must be non-nil for JSON transport
	if result.Dates == nil || result.RollingSharpe == nil {
		t.Error("empty result must use non-nil slices")
	}
}

func TestRollingWindowCount(t *testing.T) {
	series := seriesOf(t, 0, variedValues(31))

	result := Rolling(series, 30)

	// Positions 29 and 30 have a full trailing window
	if len(result.Dates) != 2 {
		t.Fatalf("got %d entries, want 2", len(result.Dates))
	}
	if len(result.RollingSharpe) != 2 || len(result.RollingVolatility) != 2 || len(result.RollingReturn) != 2 {
		t.Error("metric columns must have matching lengths")
	}
}

func TestRollingValues(t *testing.T) {
	values := variedValues(31)
	series := seriesOf(t, 0, values)

	result := Rolling(series, 30)

	// First entry covers values[0:30]
	frame := values[0:30]
	m, sd := Mean(frame), StdDev(frame)

	if got := result.RollingSharpe[0]; math.Abs(got-math.Sqrt(252)*m/sd) > 1e-12 {
		t.Errorf("RollingSharpe[0] = %v, want %v", got, math.Sqrt(252)*m/sd)
	}
	if got := result.RollingVolatility[0]; math.Abs(got-sd*math.Sqrt(252)) > 1e-12 {
		t.Errorf("RollingVolatility[0] = %v, want %v", got, sd*math.Sqrt(252))
	}
	if got := result.RollingReturn[0]; math.Abs(got-m*252) > 1e-12 {
		t.Errorf("RollingReturn[0] = %v, want %v", got, m*252)
	}
}

func TestRollingOmitsZeroVarianceWindows(t *testing.T) {
	// First 35 observations are constant: their windows have no defined
	// Sharpe and must be omitted, not coerced to 0. This asymmetry with
	// Compare's zero fallback is intentional observed behavior.
	values := make([]float64, 40)
	for i := 0; i < 35; i++ {
		values[i] = 0.01
	}
	for i := 35; i < 40; i++ {
		values[i] = 0.01 * float64(i-34)
	}
	series := seriesOf(t, 0, values)

	result := Rolling(series, 30)

	// Windows ending at 29..34 are constant and dropped; 35..39 remain
	if len(result.Dates) != 5 {
		t.Fatalf("got %d entries, want 5", len(result.Dates))
	}
	for _, s := range result.RollingSharpe {
		if s == 0 || math.IsNaN(s) {
			t.Errorf("undefined Sharpe leaked into output: %v", s)
		}
	}
}

func TestRollingDefaultWindow(t *testing.T) {
	series := seriesOf(t, 0, variedValues(40))

	// Non-positive window falls back to the 30-day default
	result := Rolling(series, 0)
	if len(result.Dates) != 11 {
		t.Errorf("got %d entries, want 11 with default window", len(result.Dates))
	}
}
