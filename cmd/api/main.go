package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelplanner/internal/cache"
	"travelplanner/internal/config"
	"travelplanner/internal/images"
	"travelplanner/internal/insight"
	"travelplanner/internal/llm"
	"travelplanner/internal/logging"
	"travelplanner/internal/places"
	"travelplanner/internal/planner"
	"travelplanner/internal/telemetry"
	transporthttp "travelplanner/internal/transport/http"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("planner api stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(cfg.TraceExporter, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	var catalog *places.Catalog
	if cfg.PlacesSource == "static" || cfg.InsightSource == "static" {
		c, err := places.LoadCatalog(cfg.StaticDataPath)
		if err != nil {
			return err
		}
		catalog = c
		logger.Info("catalog loaded", "path", cfg.StaticDataPath, "cities", len(c.Cities()))
	}

	var placesProvider planner.PlacesProvider = catalog
	if cfg.PlacesSource == "google" {
		client, err := places.NewGoogleClient(cfg.GoogleAPIKey, cfg.GoogleRPS, places.WithCurrency(cfg.DefaultCurrency))
		if err != nil {
			return err
		}
		placesProvider = client
	}

	insights := buildInsights(cfg, catalog, logger)

	var resolver planner.ImageResolver = images.CategoryResolver{Default: cfg.DefaultImage}
	if cfg.ImageSource == "google" {
		photos, err := images.NewGooglePhotoResolver(cfg.GoogleAPIKey, cfg.GoogleRPS)
		if err != nil {
			return err
		}
		resolver = photos
	}

	store, closeStore, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var shared planner.Cache
	if store != nil {
		shared = cache.NewReadThrough(store, logger)
	}

	enricher := planner.NewEnricher(insights, resolver, shared)
	enricher.MaxInFlight = cfg.MaxInFlight
	enricher.CallTimeout = cfg.CallTimeout()
	enricher.CacheTTL = cfg.CacheTTL()
	enricher.FallbackImage = images.Placeholder

	composer, err := planner.NewComposer(placesProvider, enricher, planner.Scheduler{Currency: cfg.DefaultCurrency}, logger)
	if err != nil {
		return err
	}

	deps := transporthttp.Deps{
		Composer:       composer,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout(),
		Secrets:        cfg.Secrets(),
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}
	if catalog != nil {
		deps.Cities = catalog
	}
	server := transporthttp.NewServer(deps)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout() + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("planner api listening", "addr", cfg.ListenAddr,
			"places", cfg.PlacesSource, "insights", cfg.InsightSource, "images", cfg.ImageSource, "cache", cfg.CacheBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("signal received, shutting down", "signal", sig.String())
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}
	return nil
}

func buildInsights(cfg config.Config, catalog *places.Catalog, logger *slog.Logger) planner.InsightProvider {
	if cfg.InsightSource == "static" {
		return insight.TipsProvider{Source: catalog}
	}

	provider := &insight.Provider{
		Searcher: insight.NewRedditScraper(&http.Client{Timeout: cfg.CallTimeout()}, cfg.RedditBaseURL, cfg.RedditSubreddit),
		Logger:   logger,
	}
	if cfg.LLMAPIKey != "" {
		opts := []func(*llm.Client){llm.WithModel(cfg.LLMModel)}
		if cfg.LLMBaseURL != "" {
			opts = append(opts, llm.WithBaseURL(cfg.LLMBaseURL))
		}
		provider.Summarizer = insight.LLMSummarizer{
			Client:      llm.NewClient(cfg.LLMAPIKey, opts...),
			Model:       cfg.LLMModel,
			Temperature: 0.3,
			MaxTokens:   120,
			MaxSnippets: 5,
		}
		logger.Info("LLM insight summaries enabled", "model", cfg.LLMModel)
	}
	return provider
}

func buildStore(cfg config.Config, logger *slog.Logger) (cache.Store, func(), error) {
	switch cfg.CacheBackend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := cache.DialRedis(ctx, cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("redis cache connected", "db", cfg.RedisDB)
		return cache.NewRedisStore(client, "planner:"), func() { _ = client.Close() }, nil
	case "memory":
		return cache.NewMemoryStore(cfg.CacheTTL(), 10*time.Minute), func() {}, nil
	default:
		return nil, func() {}, nil
	}
}
