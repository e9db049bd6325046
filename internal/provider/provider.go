package provider

import (
	"context"
	"time"
)

// PricePoint is a single (date, close-price) observation from a
// market-data provider
type PricePoint struct {
	Date  time.Time
	Close float64
}

// Provider fetches historical close prices for an instrument.
// Implementations may return an empty slice on no-data; callers must
// tolerate both an empty result and an error without raising further.
type Provider interface {
	FetchHistory(ctx context.Context, instrument string, start, end time.Time) ([]PricePoint, error)
}
