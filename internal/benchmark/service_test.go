package benchmark

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonhee/folio/internal/provider"
	"github.com/wonhee/folio/pkg/logger"
)

// stubProvider counts fetches and serves a fixed history
type stubProvider struct {
	prices []provider.PricePoint
	err    error
	calls  int
}

func (p *stubProvider) FetchHistory(ctx context.Context, instrument string, start, end time.Time) ([]provider.PricePoint, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.prices, nil
}

func stubPrices() []provider.PricePoint {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	closes := []float64{100, 101, 99.98, 102.5}

	prices := make([]provider.PricePoint, len(closes))
	for i, c := range closes {
		prices[i] = provider.PricePoint{Date: base.AddDate(0, 0, i), Close: c}
	}
	return prices
}

func newTestService(p provider.Provider, clock Clock) *Service {
	cache := NewCache(time.Hour, clock, logger.NewNop())
	return NewService(p, cache, clock, logger.NewNop())
}

func TestGetReturns(t *testing.T) {
	stub := &stubProvider{prices: stubPrices()}
	svc := newTestService(stub, newFakeClock())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	returns, err := svc.GetReturns(context.Background(), "^GSPC", start, end, true)
	require.NoError(t, err)

	// 4 closes yield 3 daily returns, first trading day dropped
	require.Equal(t, 3, returns.Len())
	assert.InDelta(t, 0.01, returns.At(0).Value, 1e-12)
	assert.Equal(t, "2024-01-03", returns.DateStrings()[0])
}

func TestGetSeriesEntry(t *testing.T) {
	stub := &stubProvider{prices: stubPrices()}
	svc := newTestService(stub, newFakeClock())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	entry, err := svc.GetSeries(context.Background(), "^GSPC", start, end, true)
	require.NoError(t, err)

	require.Equal(t, 4, entry.Prices.Len())
	require.Equal(t, 3, entry.Returns.Len())
	require.Equal(t, 3, entry.Cumulative.Len())

	// Final cumulative equals total price appreciation
	last, ok := entry.Cumulative.Last()
	require.True(t, ok)
	assert.InDelta(t, 102.5/100.0-1.0, last.Value, 1e-12)
}

func TestGetReturnsCacheHit(t *testing.T) {
	stub := &stubProvider{prices: stubPrices()}
	clock := newFakeClock()
	svc := newTestService(stub, clock)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	first, err := svc.GetReturns(context.Background(), "^GSPC", start, end, true)
	require.NoError(t, err)

	second, err := svc.GetReturns(context.Background(), "^GSPC", start, end, true)
	require.NoError(t, err)

	assert.Equal(t, 1, stub.calls, "second call within TTL must not hit the provider")
	assert.Equal(t, first.Values(), second.Values())
	assert.Equal(t, first.DateStrings(), second.DateStrings())

	// After TTL expiry the provider is consulted again
	clock.Advance(61 * time.Minute)
	_, err = svc.GetReturns(context.Background(), "^GSPC", start, end, true)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestGetReturnsCacheBypass(t *testing.T) {
	stub := &stubProvider{prices: stubPrices()}
	svc := newTestService(stub, newFakeClock())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetReturns(context.Background(), "^GSPC", start, end, false)
	require.NoError(t, err)
	_, err = svc.GetReturns(context.Background(), "^GSPC", start, end, false)
	require.NoError(t, err)

	assert.Equal(t, 2, stub.calls)
}

func TestGetReturnsProviderError(t *testing.T) {
	stub := &stubProvider{err: errors.New("upstream down")}
	svc := newTestService(stub, newFakeClock())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	returns, err := svc.GetReturns(context.Background(), "^GSPC", start, end, true)
	require.NoError(t, err)
	assert.True(t, returns.IsEmpty())

	// Failures are never cached
	_, err = svc.GetReturns(context.Background(), "^GSPC", start, end, true)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestGetReturnsEmptyHistory(t *testing.T) {
	stub := &stubProvider{}
	svc := newTestService(stub, newFakeClock())

	returns, err := svc.GetReturns(context.Background(), "^GSPC", time.Time{}, time.Time{}, true)
	require.NoError(t, err)
	assert.True(t, returns.IsEmpty())
}

func TestGetReturnsDefaultRange(t *testing.T) {
	var gotStart, gotEnd time.Time
	stub := &rangeProvider{onFetch: func(start, end time.Time) {
		gotStart, gotEnd = start, end
	}}
	clock := newFakeClock()
	svc := newTestService(stub, clock)

	_, err := svc.GetReturns(context.Background(), "^GSPC", time.Time{}, time.Time{}, true)
	require.NoError(t, err)

	assert.Equal(t, clock.Now(), gotEnd)
	assert.Equal(t, clock.Now().AddDate(0, 0, -DefaultLookbackDays), gotStart)
}

func TestClearCache(t *testing.T) {
	stub := &stubProvider{prices: stubPrices()}
	svc := newTestService(stub, newFakeClock())

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetReturns(context.Background(), "^GSPC", start, end, true)
	require.NoError(t, err)

	assert.Equal(t, 1, svc.ClearCache())

	_, err = svc.GetReturns(context.Background(), "^GSPC", start, end, true)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls, "clear must force a refetch")
}

// rangeProvider records the requested date range
type rangeProvider struct {
	onFetch func(start, end time.Time)
}

func (p *rangeProvider) FetchHistory(ctx context.Context, instrument string, start, end time.Time) ([]provider.PricePoint, error) {
	p.onFetch(start, end)
	return nil, nil
}
