package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonhee/folio/internal/api/handlers"
	"github.com/wonhee/folio/internal/benchmark"
	"github.com/wonhee/folio/internal/provider"
	"github.com/wonhee/folio/pkg/config"
	"github.com/wonhee/folio/pkg/logger"
	"github.com/wonhee/folio/pkg/redis"
)

type emptyProvider struct{}

func (emptyProvider) FetchHistory(ctx context.Context, instrument string, start, end time.Time) ([]provider.PricePoint, error) {
	return nil, nil
}

func testRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	log := logger.NewNop()
	cache := benchmark.NewCache(cfg.Benchmark.CacheTTL, nil, log)
	svc := benchmark.NewService(emptyProvider{}, cache, nil, log)

	redisClient, err := redis.New(cfg)
	require.NoError(t, err)
	respCache := redis.NewCache(redisClient)

	analyticsHandler := handlers.NewAnalyticsHandler(svc, nil, respCache, cfg, log)
	adminHandler := handlers.NewAdminHandler(svc, log)

	return NewRouter(analyticsHandler, adminHandler, cfg, log)
}

func baseConfig() *config.Config {
	return &config.Config{
		Port: "8084",
		Env:  "development",
		Redis: config.RedisConfig{
			ResponseTTL: 5 * time.Minute,
		},
		Benchmark: config.BenchmarkConfig{
			Instrument: "^GSPC",
			CacheTTL:   time.Hour,
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t, baseConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "folio-api", payload["service"])
}

func TestMetricsEndpoint(t *testing.T) {
	cfg := baseConfig()
	cfg.MetricsEnabled = true
	router := testRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsDisabled(t *testing.T) {
	router := testRouter(t, baseConfig())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	router := testRouter(t, baseConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/benchmark", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	log := logger.NewNop()
	handler := recoveryMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
