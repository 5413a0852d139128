package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Quotes/internal/api"
	"github.com/MikeSquared-Agency/Quotes/internal/catalog"
	"github.com/MikeSquared-Agency/Quotes/internal/config"
	"github.com/MikeSquared-Agency/Quotes/internal/hermes"
	"github.com/MikeSquared-Agency/Quotes/internal/recommend"
	"github.com/MikeSquared-Agency/Quotes/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Error("failed to load catalog", "path", cfg.Catalog.Path, "error", err)
		os.Exit(1)
	}
	logger.Info("catalog loaded",
		"vendors", len(cat.Vendors()),
		"equipment", cat.EquipmentCount(),
		"products", len(cat.Products()),
	)

	weights, err := cfg.DefaultWeights()
	if err != nil {
		logger.Warn("ignoring configured weights", "error", err)
	}

	// Store: Postgres when configured, otherwise sessions live in memory
	var db store.Store
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		db = pg
		logger.Info("connected to database")
	} else {
		db = store.NewMemoryStore()
		logger.Info("using in-memory session store")
	}
	defer db.Close()

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Recommendations need the server-side credential
	var svc *recommend.Service
	if cfg.LLM.APIKey != "" {
		retry := recommend.DefaultRetryConfig()
		retry.MaxAttempts = cfg.LLM.MaxAttempts
		if cfg.LLM.BackoffBaseMs > 0 {
			retry.BackoffBase = cfg.BackoffBase()
		}
		client := recommend.NewAnthropicClient(recommend.AnthropicConfig{
			BaseURL:   cfg.LLM.BaseURL,
			APIKey:    cfg.LLM.APIKey,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
			Timeout:   cfg.LLMTimeout(),
			Retry:     retry,
		}, logger)
		svc = recommend.NewService(client, db, hermesClient, recommend.ServiceConfig{
			Observer: api.ObserveRecommendation,
		}, logger)
		defer svc.Stop()
		logger.Info("recommendations enabled", "model", cfg.LLM.Model)
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, recommendations disabled")
	}

	// API server
	router := api.NewRouter(api.Deps{
		Catalog:           cat,
		Store:             db,
		Hermes:            hermesClient,
		Recommend:         svc,
		InitialWeights:    weights,
		Facility:          cfg.Scoring.Facility,
		AccessToken:       cfg.Server.AccessToken,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	}, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
