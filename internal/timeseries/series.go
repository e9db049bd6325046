package timeseries

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// DateLayout is the canonical day-granularity date format
const DateLayout = "2006-01-02"

// Point is a single (date, value) observation
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an ordered sequence of (date, value) pairs
// ⭐ SSOT: 날짜 기반 시계열 연산은 이 타입에서만
// Invariant: dates are strictly increasing at day granularity, no duplicates
type Series struct {
	points []Point
}

// New creates an empty series
func New() *Series {
	return &Series{}
}

// FromPairs builds a series from parallel date/value slices
// Dates must be strictly increasing at day granularity
func FromPairs(dates []time.Time, values []float64) (*Series, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("length mismatch: %d dates, %d values", len(dates), len(values))
	}

	s := &Series{points: make([]Point, 0, len(dates))}
	for i := range dates {
		if err := s.Append(dates[i], values[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Append adds an observation, enforcing strictly increasing dates
func (s *Series) Append(date time.Time, value float64) error {
	day := Truncate(date)

	if n := len(s.points); n > 0 {
		last := s.points[n-1].Date
		if !day.After(last) {
			return fmt.Errorf("date %s not after previous date %s",
				day.Format(DateLayout), last.Format(DateLayout))
		}
	}

	s.points = append(s.points, Point{Date: day, Value: value})
	return nil
}

// Truncate normalizes a timestamp to day granularity in UTC
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Len returns the number of observations
func (s *Series) Len() int {
	return len(s.points)
}

// IsEmpty reports whether the series has no observations
func (s *Series) IsEmpty() bool {
	return len(s.points) == 0
}

// At returns the i-th observation
func (s *Series) At(i int) Point {
	return s.points[i]
}

// Last returns the final observation; ok is false for an empty series
func (s *Series) Last() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// Dates returns the date column
func (s *Series) Dates() []time.Time {
	dates := make([]time.Time, len(s.points))
	for i, p := range s.points {
		dates[i] = p.Date
	}
	return dates
}

// DateStrings returns the date column formatted for transport
func (s *Series) DateStrings() []string {
	dates := make([]string, len(s.points))
	for i, p := range s.points {
		dates[i] = p.Date.Format(DateLayout)
	}
	return dates
}

// Values returns the value column
func (s *Series) Values() []float64 {
	values := make([]float64, len(s.points))
	for i, p := range s.points {
		values[i] = p.Value
	}
	return values
}

// Digest returns a short stable content hash identifying the series.
// Two series are assigned the same digest only when they agree on every
// (date, value) pair; used to key per-series cached results.
func (s *Series) Digest() string {
	h := sha256.New()
	for _, p := range s.points {
		fmt.Fprintf(h, "%s:%x;", p.Date.Format(DateLayout), math.Float64bits(p.Value))
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// DropNaN returns a copy without not-a-number observations
func (s *Series) DropNaN() *Series {
	out := &Series{points: make([]Point, 0, len(s.points))}
	for _, p := range s.points {
		if math.IsNaN(p.Value) {
			continue
		}
		out.points = append(out.points, p)
	}
	return out
}

// DailyReturns derives a daily return series from a close-price series
// The first row has no defined return and is dropped; a zero previous
// close produces no row (degenerate percentage change)
func DailyReturns(prices *Series) *Series {
	out := &Series{}
	if prices.Len() < 2 {
		return out
	}

	out.points = make([]Point, 0, prices.Len()-1)
	for i := 1; i < prices.Len(); i++ {
		prev := prices.points[i-1].Value
		if prev == 0 {
			continue
		}
		out.points = append(out.points, Point{
			Date:  prices.points[i].Date,
			Value: (prices.points[i].Value - prev) / prev,
		})
	}
	return out
}

// CumulativeReturns derives a compounded cumulative return series
// cumulative_i = (1+r_1)·…·(1+r_i) − 1
func CumulativeReturns(returns *Series) *Series {
	out := &Series{points: make([]Point, 0, returns.Len())}

	cum := 1.0
	for _, p := range returns.points {
		cum *= 1.0 + p.Value
		out.points = append(out.points, Point{Date: p.Date, Value: cum - 1.0})
	}
	return out
}

// Align intersects two series on date and drops rows where either value
// is not a number. Both returned columns share the returned date order.
func Align(a, b *Series) (dates []time.Time, av, bv []float64) {
	byDate := make(map[time.Time]float64, b.Len())
	for _, p := range b.points {
		byDate[p.Date] = p.Value
	}

	for _, p := range a.points {
		bval, ok := byDate[p.Date]
		if !ok {
			continue
		}
		if math.IsNaN(p.Value) || math.IsNaN(bval) {
			continue
		}
		dates = append(dates, p.Date)
		av = append(av, p.Value)
		bv = append(bv, bval)
	}
	return dates, av, bv
}
