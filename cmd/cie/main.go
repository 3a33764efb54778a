package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samyukta/credit-intelligence-go/internal/config"
	"github.com/samyukta/credit-intelligence-go/internal/domain"
	"github.com/samyukta/credit-intelligence-go/internal/handler"
	"github.com/samyukta/credit-intelligence-go/internal/infra/analyst"
	"github.com/samyukta/credit-intelligence-go/internal/infra/cache"
	"github.com/samyukta/credit-intelligence-go/internal/infra/google"
	"github.com/samyukta/credit-intelligence-go/internal/infra/market"
	"github.com/samyukta/credit-intelligence-go/internal/infra/observability"
	"github.com/samyukta/credit-intelligence-go/internal/infra/resilience"
	"github.com/samyukta/credit-intelligence-go/internal/port"
	"github.com/samyukta/credit-intelligence-go/internal/service"
	"github.com/samyukta/credit-intelligence-go/internal/session"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("demo_auth", cfg.DemoAuth),
		zap.String("groq_model", cfg.GroqModel),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Duration("market_cache_ttl", cfg.MarketCacheTTL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "credit-intelligence-engine")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	marketCache := cache.New[domain.MarketSnapshot](cfg.MarketCacheTTL)
	stateCache := cache.New[string](10 * time.Minute)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	marketCB := resilience.NewCircuitBreaker("market-feed")
	analystCB := resilience.NewCircuitBreaker("groq")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	marketProvider := market.NewProvider(httpClient, cfg.MarketAPIURL, marketCB, resilienceCfg, marketCache, logger)
	analystClient := analyst.NewClient(httpClient, cfg.GroqAPIURL, cfg.GroqAPIKey, cfg.GroqModel, analystCB, resilienceCfg)

	var oauthProvider port.OAuthProvider
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		oauthProvider = google.NewProvider(httpClient, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
		logger.Info("google oauth enabled", zap.String("redirect_uri", cfg.GoogleRedirectURI))
	} else {
		logger.Warn("google oauth not configured, only demo login available")
	}

	// --- Sessions ---
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, cfg.AdminEmails, logger)

	// --- Services ---
	authSvc := service.NewAuth(oauthProvider, sessions, stateCache, cfg.SessionTTL, cfg.DemoAuth, logger)
	advisor := service.NewAdvisor(marketProvider, analystClient, bulkhead, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(advisor, authSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
