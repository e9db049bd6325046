package benchmark

import (
	"context"
	"time"

	"github.com/wonhee/folio/internal/provider"
	"github.com/wonhee/folio/internal/timeseries"
	"github.com/wonhee/folio/pkg/logger"
)

// DefaultLookbackDays is the history window used when no date range is given
const DefaultLookbackDays = 365

// Service fetches benchmark history and serves daily return series
// ⭐ SSOT: 벤치마크 수익률 조회는 이 서비스에서만
type Service struct {
	provider provider.Provider
	cache    *Cache
	clock    Clock
	logger   *logger.Logger
}

// NewService creates a new benchmark service
func NewService(p provider.Provider, cache *Cache, clock Clock, log *logger.Logger) *Service {
	if clock == nil {
		clock = RealClock()
	}
	return &Service{
		provider: p,
		cache:    cache,
		clock:    clock,
		logger:   log,
	}
}

// GetSeries returns the benchmark's price series with derived daily and
// cumulative returns for the date range. Zero start/end fall back to the
// trailing year ending now. Provider failures and empty histories both
// yield an empty entry with no error; nothing is cached in that case so
// the next call retries the fetch.
func (s *Service) GetSeries(ctx context.Context, instrument string, start, end time.Time, useCache bool) (*Entry, error) {
	if end.IsZero() {
		end = s.clock.Now()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -DefaultLookbackDays)
	}

	key := Key(instrument, start, end)

	if useCache {
		if entry, ok := s.cache.Get(key); ok {
			s.logger.WithField("key", key).Debug("Benchmark cache hit")
			return entry, nil
		}
	}

	prices, err := s.provider.FetchHistory(ctx, instrument, start, end)
	if err != nil {
		s.logger.WithError(err).WithField("instrument", instrument).Warn("Benchmark fetch failed")
		return emptyEntry(), nil
	}
	if len(prices) == 0 {
		s.logger.WithField("instrument", instrument).Warn("Benchmark history empty")
		return emptyEntry(), nil
	}

	priceSeries := timeseries.New()
	for _, p := range prices {
		if err := priceSeries.Append(p.Date, p.Close); err != nil {
			// Duplicate trading day from the provider, keep the first
			s.logger.WithFields(map[string]interface{}{
				"instrument": instrument,
				"date":       p.Date,
			}).Debug("Skipped out-of-order price point")
		}
	}

	returns := timeseries.DailyReturns(priceSeries)
	entry := &Entry{
		Prices:     priceSeries,
		Returns:    returns,
		Cumulative: timeseries.CumulativeReturns(returns),
	}

	if returns.IsEmpty() {
		return entry, nil
	}

	s.cache.Put(key, entry)

	s.logger.WithFields(map[string]interface{}{
		"instrument": instrument,
		"points":     returns.Len(),
	}).Info("Fetched benchmark series")

	return entry, nil
}

// GetReturns is a convenience accessor for just the daily return series
func (s *Service) GetReturns(ctx context.Context, instrument string, start, end time.Time, useCache bool) (*timeseries.Series, error) {
	entry, err := s.GetSeries(ctx, instrument, start, end, useCache)
	if err != nil {
		return nil, err
	}
	return entry.Returns, nil
}

func emptyEntry() *Entry {
	return &Entry{
		Prices:     timeseries.New(),
		Returns:    timeseries.New(),
		Cumulative: timeseries.New(),
	}
}

// ClearCache drops all cached benchmark series
func (s *Service) ClearCache() int {
	return s.cache.Clear()
}
