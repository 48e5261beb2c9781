package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/wallet-console-go/internal/config"
	"github.com/boddenberg/wallet-console-go/internal/handler"
	"github.com/boddenberg/wallet-console-go/internal/infra/cache"
	"github.com/boddenberg/wallet-console-go/internal/infra/client"
	"github.com/boddenberg/wallet-console-go/internal/infra/observability"
	"github.com/boddenberg/wallet-console-go/internal/infra/resilience"
	"github.com/boddenberg/wallet-console-go/internal/infra/session"
	"github.com/boddenberg/wallet-console-go/internal/notify"
	"github.com/boddenberg/wallet-console-go/internal/port"
	"github.com/boddenberg/wallet-console-go/internal/screen"
	"github.com/boddenberg/wallet-console-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("backend_url", cfg.BackendURL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Duration("notify_ttl", cfg.NotifyTTL),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Bool("redis_sessions", cfg.RedisURL != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "wallet-console")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Backend gateway ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	gateway := client.NewGateway(httpClient, cfg.BackendURL, resilienceCfg, logger)

	// --- Services ---
	backend := service.NewBackend(gateway, metrics, logger)
	verifier := service.NewVerifier(backend, metrics, logger)
	transfers := service.NewTransfers(backend, metrics, logger)

	// --- Sessions ---
	var store port.SessionStore
	var readyChecks []handler.ReadyCheck
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := session.NewRedisClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		store = session.NewRedisStore(redisClient)
		readyChecks = append(readyChecks, handler.ReadyCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
		logger.Info("sessions stored in redis")
	} else {
		memStore := session.NewMemoryStore(cfg.SessionTTL)
		defer memStore.Close()
		store = memStore
		logger.Warn("REDIS_URL not set: sessions are kept in memory and lost on restart")
	}

	tokens, err := session.NewTokens(cfg.SessionSecret)
	if err != nil {
		logger.Fatal("failed to init session tokens", zap.Error(err))
	}

	consoles := cache.New[*screen.Console](cfg.SessionTTL,
		cache.WithEvictHook(func(string, *screen.Console) { metrics.SessionClosed() }),
	)
	defer consoles.Close()

	// --- Router ---
	router := handler.NewRouter(handler.Options{
		Screens: screen.Deps{
			Backend:   backend,
			Verifier:  verifier,
			Transfers: transfers,
			Metrics:   metrics,
			Logger:    logger,
			Notify:    []notify.Option{notify.WithDelay(cfg.NotifyTTL)},
		},
		Store:           store,
		Tokens:          tokens,
		Consoles:        consoles,
		SessionTTL:      cfg.SessionTTL,
		LoginRatePerMin: cfg.LoginRatePerMin,
		AllowedOrigins:  cfg.AllowedOrigins(),
		ReadyChecks:     readyChecks,
		Metrics:         metrics,
		Logger:          logger,
	})

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
