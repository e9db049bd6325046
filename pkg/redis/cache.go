package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// keyPrefix namespaces every cache key written by this service
const keyPrefix = "folio"

// Cache provides typed caching utilities for computed analytics payloads
// ⭐ SSOT: 응답 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
}

// NewCache creates a new cache helper
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// Get retrieves a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", keyPrefix, key)
	data, err := c.client.Redis().Get(ctx, fullKey).Bytes()
	if err != nil {
		// Key not found is not an error
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	fullKey := fmt.Sprintf("%s:cache:%s", keyPrefix, key)
	return c.client.Redis().Set(ctx, fullKey, data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	fullKey := fmt.Sprintf("%s:cache:%s", keyPrefix, key)
	return c.client.Redis().Del(ctx, fullKey).Err()
}

// ComparisonKey builds the response-cache key for a benchmark comparison.
// seriesID identifies the portfolio itself (account id or content digest)
// so results never cross between portfolios.
func ComparisonKey(instrument, start, end, seriesID string) string {
	return fmt.Sprintf("comparison:%s:%s:%s:%s", instrument, start, end, seriesID)
}

// RiskKey builds the response-cache key for portfolio risk metrics.
// benchID distinguishes no benchmark, the fetched instrument, and any
// inline-supplied benchmark series.
func RiskKey(instrument, start, end string, confidence float64, seriesID, benchID string) string {
	return fmt.Sprintf("risk:%s:%s:%s:%.2f:%s:%s", instrument, start, end, confidence, seriesID, benchID)
}
