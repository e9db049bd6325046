package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonhee/folio/internal/api"
	"github.com/wonhee/folio/internal/api/handlers"
	"github.com/wonhee/folio/internal/benchmark"
	"github.com/wonhee/folio/internal/portfolio"
	"github.com/wonhee/folio/internal/provider"
	"github.com/wonhee/folio/pkg/config"
	"github.com/wonhee/folio/pkg/database"
	"github.com/wonhee/folio/pkg/httputil"
	"github.com/wonhee/folio/pkg/logger"
	"github.com/wonhee/folio/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the analytics API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health                       - Health check
  GET  /metrics                      - Prometheus metrics
  POST /api/analytics/benchmark      - Benchmark comparison
  POST /api/analytics/rolling        - Rolling metrics
  POST /api/analytics/distribution   - Return distribution
  POST /api/analytics/risk           - VaR / CVaR / beta
  POST /api/admin/cache/clear        - Drop cached benchmark series

Example:
  go run ./cmd/folio api
  go run ./cmd/folio api --port 8084`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database (optional, enables account-backed requests)
	var portfolioRepo *portfolio.Repository
	if cfg.HasDatabase() {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		portfolioRepo = portfolio.NewRepository(db.Pool)
		log.Info("Connected to database")
	} else {
		log.Info("No database configured, account-backed requests disabled")
	}

	// 4. Connect to Redis (optional, enables response caching)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	respCache := redis.NewCache(redisClient)

	// 5. Create rate-limited HTTP client and benchmark provider
	httpClient := httputil.New(log).
		WithRateLimit(cfg.Benchmark.RateLimit, cfg.Benchmark.RateBurst)
	yahooClient := provider.NewYahooClient(httpClient, cfg.Benchmark.ProviderBaseURL, log)

	// 6. Create benchmark cache and service
	benchCache := benchmark.NewCache(cfg.Benchmark.CacheTTL, benchmark.RealClock(), log)
	benchSvc := benchmark.NewService(yahooClient, benchCache, benchmark.RealClock(), log)

	// 7. Create handlers
	analyticsHandler := handlers.NewAnalyticsHandler(benchSvc, portfolioRepo, respCache, cfg, log)
	adminHandler := handlers.NewAdminHandler(benchSvc, log)

	// 8. Create router and server
	router := api.NewRouter(analyticsHandler, adminHandler, cfg, log)
	server := api.New(cfg, log, router)

	// 9. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
