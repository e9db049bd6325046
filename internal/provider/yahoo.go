package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wonhee/folio/pkg/httputil"
	"github.com/wonhee/folio/pkg/logger"
)

// YahooClient fetches index/instrument history from the Yahoo Finance
// chart API
// ⭐ SSOT: 벤치마크 시세 API 호출은 이 클라이언트에서만
type YahooClient struct {
	httpClient *httputil.Client
	baseURL    string
	logger     *logger.Logger
}

// NewYahooClient creates a new Yahoo Finance client
func NewYahooClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *YahooClient {
	return &YahooClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     log,
	}
}

// chartResponse mirrors the Yahoo chart API envelope
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// FetchHistory fetches daily close prices for an instrument
func (c *YahooClient) FetchHistory(ctx context.Context, instrument string, start, end time.Time) ([]PricePoint, error) {
	fullURL := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		c.baseURL, url.PathEscape(instrument), start.Unix(), end.Unix(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	prices, err := parseChartResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"instrument": instrument,
		"count":      len(prices),
	}).Debug("Fetched benchmark history")

	return prices, nil
}

// parseChartResponse converts the chart envelope into price points
func parseChartResponse(body []byte) ([]PricePoint, error) {
	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, err
	}

	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	var prices []PricePoint
	for i, ts := range result.Timestamp {
		if i >= len(closes) {
			break
		}
		// Null closes decode as 0 and carry no information
		if closes[i] <= 0 {
			continue
		}
		prices = append(prices, PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: closes[i],
		})
	}

	return prices, nil
}
