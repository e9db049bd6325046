package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wonhee/folio/internal/analytics"
	"github.com/wonhee/folio/internal/benchmark"
	"github.com/wonhee/folio/internal/portfolio"
	"github.com/wonhee/folio/internal/timeseries"
	"github.com/wonhee/folio/pkg/config"
	"github.com/wonhee/folio/pkg/logger"
	"github.com/wonhee/folio/pkg/redis"
)

// AnalyticsHandler handles returns-analytics API endpoints
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalyticsHandler struct {
	benchmarkSvc  *benchmark.Service
	portfolioRepo *portfolio.Repository
	respCache     *redis.Cache
	cfg           *config.Config
	logger        *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
// portfolioRepo may be nil when no database is configured; requests that
// reference an account_id then fail with a client error.
func NewAnalyticsHandler(
	benchmarkSvc *benchmark.Service,
	portfolioRepo *portfolio.Repository,
	respCache *redis.Cache,
	cfg *config.Config,
	log *logger.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		benchmarkSvc:  benchmarkSvc,
		portfolioRepo: portfolioRepo,
		respCache:     respCache,
		cfg:           cfg,
		logger:        log,
	}
}

// ReturnsRequest is the shared request shape carrying a portfolio return series.
// Callers either inline dates/returns or name a stored account.
type ReturnsRequest struct {
	Returns   []float64 `json:"returns"`
	Dates     []string  `json:"dates"`
	AccountID string    `json:"account_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(timeseries.DateLayout, s)
}

// seriesID identifies a portfolio series for response-cache keys: the
// account id when the series was loaded from storage, otherwise a
// content digest of the inline series
func seriesID(accountID string, series *timeseries.Series) string {
	if accountID != "" {
		return accountID
	}
	return series.Digest()
}

// resolveSeries turns the request into a portfolio return series, loading
// from the repository when account_id is set
func (h *AnalyticsHandler) resolveSeries(r *http.Request, req *ReturnsRequest) (*timeseries.Series, int, string) {
	if req.AccountID != "" {
		if h.portfolioRepo == nil {
			return nil, http.StatusBadRequest, "No portfolio database configured"
		}

		start, end, err := h.parseRange(req.StartDate, req.EndDate)
		if err != nil {
			return nil, http.StatusBadRequest, "Invalid date format (expected YYYY-MM-DD)"
		}

		series, err := h.portfolioRepo.GetDailyReturns(r.Context(), req.AccountID, start, end)
		if err != nil {
			h.logger.WithError(err).WithField("account_id", req.AccountID).Error("Failed to load portfolio returns")
			return nil, http.StatusInternalServerError, "Failed to load portfolio returns"
		}
		return series, 0, ""
	}

	if len(req.Returns) == 0 {
		return nil, http.StatusBadRequest, "Missing portfolio returns"
	}
	if len(req.Dates) != len(req.Returns) {
		return nil, http.StatusBadRequest, "dates and returns must have the same length"
	}

	dates := make([]time.Time, len(req.Dates))
	for i, ds := range req.Dates {
		d, err := parseDate(ds)
		if err != nil {
			return nil, http.StatusBadRequest, "Invalid date format (expected YYYY-MM-DD)"
		}
		dates[i] = d
	}

	series, err := timeseries.FromPairs(dates, req.Returns)
	if err != nil {
		return nil, http.StatusBadRequest, "Dates must be strictly increasing"
	}

	return series, 0, ""
}

// parseRange parses an optional date range, defaulting to the trailing year
func (h *AnalyticsHandler) parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseDate(endStr)
		if err != nil {
			return start, end, err
		}
	} else {
		end = timeseries.Truncate(time.Now().UTC())
	}

	if startStr != "" {
		start, err = parseDate(startStr)
		if err != nil {
			return start, end, err
		}
	} else {
		start = end.AddDate(0, 0, -benchmark.DefaultLookbackDays)
	}

	return start, end, nil
}

// CompareRequest is the benchmark comparison request
type CompareRequest struct {
	ReturnsRequest
	UseCache *bool `json:"use_cache"`
}

// CompareBenchmark compares portfolio returns against the configured benchmark
// POST /api/analytics/benchmark
func (h *AnalyticsHandler) CompareBenchmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	series, status, msg := h.resolveSeries(r, &req.ReturnsRequest)
	if msg != "" {
		respondError(w, status, msg)
		return
	}

	useCache := req.UseCache == nil || *req.UseCache

	start, end, err := h.parseRange(req.StartDate, req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (expected YYYY-MM-DD)")
		return
	}

	instrument := h.cfg.Benchmark.Instrument
	cacheKey := redis.ComparisonKey(
		instrument,
		start.Format(timeseries.DateLayout),
		end.Format(timeseries.DateLayout),
		seriesID(req.AccountID, series),
	)

	if useCache {
		var cached analytics.ComparisonResult
		if hit, err := h.respCache.Get(ctx, cacheKey, &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	benchReturns, err := h.benchmarkSvc.GetReturns(ctx, instrument, start, end, useCache)
	if err != nil || benchReturns.IsEmpty() {
		respondError(w, http.StatusServiceUnavailable, "Could not fetch benchmark data")
		return
	}

	pair, err := analytics.AlignReturns(series, benchReturns)
	if err != nil {
		var overlapErr *analytics.InsufficientOverlapError
		if errors.As(err, &overlapErr) {
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":       "Insufficient overlapping data points",
				"data_points": overlapErr.DataPoints,
			})
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to align return series")
		return
	}

	result := analytics.Compare(pair)

	if useCache {
		if err := h.respCache.Set(ctx, cacheKey, result, h.cfg.Redis.ResponseTTL); err != nil {
			h.logger.WithError(err).Warn("Failed to cache comparison response")
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// RollingRequest is the rolling metrics request
type RollingRequest struct {
	ReturnsRequest
	Window int `json:"window"`
}

// RollingMetrics computes rolling Sharpe, volatility and annualized return
// POST /api/analytics/rolling
func (h *AnalyticsHandler) RollingMetrics(w http.ResponseWriter, r *http.Request) {
	var req RollingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	series, status, msg := h.resolveSeries(r, &req.ReturnsRequest)
	if msg != "" {
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, analytics.Rolling(series, req.Window))
}

// DistributionRequest is the return distribution request
type DistributionRequest struct {
	ReturnsRequest
	Bins int `json:"bins"`
}

// Distribution computes histogram, moments and tail risk for a return series
// POST /api/analytics/distribution
func (h *AnalyticsHandler) Distribution(w http.ResponseWriter, r *http.Request) {
	var req DistributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Distribution ignores dates, so synthesize them when omitted
	if req.AccountID == "" && len(req.Dates) == 0 && len(req.Returns) > 0 {
		base := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
		req.Dates = make([]string, len(req.Returns))
		for i := range req.Returns {
			req.Dates[i] = base.AddDate(0, 0, i).Format(timeseries.DateLayout)
		}
	}

	series, status, msg := h.resolveSeries(r, &req.ReturnsRequest)
	if msg != "" {
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, analytics.Distribution(series, req.Bins))
}

// RiskRequest is the portfolio risk metrics request
type RiskRequest struct {
	ReturnsRequest
	Confidence       float64   `json:"confidence"`
	Method           string    `json:"method"`
	WithBenchmark    bool      `json:"with_benchmark"`
	BenchmarkReturns []float64 `json:"benchmark_returns"`
	BenchmarkDates   []string  `json:"benchmark_dates"`
}

// RiskMetrics computes VaR, CVaR, volatility and optionally beta/alpha
// POST /api/analytics/risk
func (h *AnalyticsHandler) RiskMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	series, status, msg := h.resolveSeries(r, &req.ReturnsRequest)
	if msg != "" {
		respondError(w, status, msg)
		return
	}

	confidence := req.Confidence
	if confidence == 0 {
		confidence = analytics.DefaultConfidence
	}
	if confidence <= 0 || confidence >= 1 {
		respondError(w, http.StatusBadRequest, "confidence must be between 0 and 1")
		return
	}

	if req.Method != "" && req.Method != "historical" && req.Method != "parametric" {
		respondError(w, http.StatusBadRequest, "Invalid method (valid: historical, parametric)")
		return
	}

	benchSeries, status, msg := h.resolveBenchmark(r, &req)
	if msg != "" {
		respondError(w, status, msg)
		return
	}

	benchID := "none"
	if benchSeries != nil && !benchSeries.IsEmpty() {
		if len(req.BenchmarkReturns) > 0 {
			benchID = benchSeries.Digest()
		} else {
			benchID = "fetched"
		}
	}

	cacheKey := redis.RiskKey(
		h.cfg.Benchmark.Instrument,
		req.StartDate, req.EndDate,
		confidence,
		seriesID(req.AccountID, series),
		benchID,
	)

	if req.Method != "parametric" {
		var cached analytics.RiskMetricsResult
		if hit, err := h.respCache.Get(ctx, cacheKey, &cached); err == nil && hit {
			respondJSON(w, http.StatusOK, &cached)
			return
		}
	}

	result := analytics.RiskMetrics(series, confidence, benchSeries)
	if req.Method == "parametric" {
		result.VaR = analytics.ParametricVaR(series.DropNaN().Values(), confidence)
	}

	if req.Method != "parametric" {
		if err := h.respCache.Set(ctx, cacheKey, result, h.cfg.Redis.ResponseTTL); err != nil {
			h.logger.WithError(err).Warn("Failed to cache risk response")
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// resolveBenchmark builds the benchmark series for a risk request, either
// from inline values or by fetching the configured instrument
func (h *AnalyticsHandler) resolveBenchmark(r *http.Request, req *RiskRequest) (*timeseries.Series, int, string) {
	if len(req.BenchmarkReturns) > 0 {
		if len(req.BenchmarkDates) != len(req.BenchmarkReturns) {
			return nil, http.StatusBadRequest, "benchmark_dates and benchmark_returns must have the same length"
		}

		dates := make([]time.Time, len(req.BenchmarkDates))
		for i, ds := range req.BenchmarkDates {
			d, err := parseDate(ds)
			if err != nil {
				return nil, http.StatusBadRequest, "Invalid date format (expected YYYY-MM-DD)"
			}
			dates[i] = d
		}

		series, err := timeseries.FromPairs(dates, req.BenchmarkReturns)
		if err != nil {
			return nil, http.StatusBadRequest, "Benchmark dates must be strictly increasing"
		}
		return series, 0, ""
	}

	if !req.WithBenchmark {
		return nil, 0, ""
	}

	start, end, err := h.parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, http.StatusBadRequest, "Invalid date format (expected YYYY-MM-DD)"
	}

	series, err := h.benchmarkSvc.GetReturns(r.Context(), h.cfg.Benchmark.Instrument, start, end, true)
	if err != nil {
		return nil, http.StatusServiceUnavailable, "Could not fetch benchmark data"
	}
	return series, 0, ""
}
