package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kzmarket/listingworker/config"
	"kzmarket/listingworker/internal"
	"kzmarket/listingworker/internal/adapter"
	"kzmarket/listingworker/internal/scraper"
	"kzmarket/listingworker/logger"
	"kzmarket/listingworker/services/api"
	"kzmarket/listingworker/services/publisher"
	"kzmarket/listingworker/services/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("http_addr", cfg.HTTPAddr).
		Int("watch_urls", len(cfg.WatchURLs)).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	deps, err := initializeDependencies(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer deps.Close()

	log.Info().Strs("sites", deps.Registry.SiteKeys()).Msg("Registered marketplaces")

	server := api.NewServer(cfg.HTTPAddr, deps.Scraper, api.Options{
		AppURL:    cfg.AppURL,
		Sites:     deps.Registry.SiteKeys(),
		VerifyTLS: cfg.VerifyTLS,
	})

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start()
	}()

	workerDone := make(chan error, 1)
	if len(cfg.WatchURLs) > 0 {
		w := worker.NewWorker(ctx, deps.Scraper, deps.Publisher, cfg.WatchURLs, cfg.VerifyTLS, cfg.CrawlInterval)
		go func() {
			log.Info().Dur("crawl_interval", cfg.CrawlInterval).Msg("Starting listing worker")
			workerDone <- w.Start()
		}()
	}

	// Wait for shutdown signal, server failure or worker exit
	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverDone:
		if err != nil {
			log.Error().Err(err).Msg("HTTP API exited with error")
		}
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP API shutdown failed")
	}
}

// initializeDependencies builds the registry, the scraper and, when enabled, the publisher
func initializeDependencies(ctx context.Context, cfg config.Config) (*internal.Dependencies, error) {
	gazetteer, err := config.LoadGazetteer(cfg.GazetteerPath)
	if err != nil {
		return nil, err
	}

	registry := adapter.NewDefaultRegistry(gazetteer)
	deps := &internal.Dependencies{
		Registry: registry,
		Scraper: scraper.New(registry, scraper.Options{
			Timeout: cfg.FetchTimeout,
			PaceMin: cfg.PaceMin,
			PaceMax: cfg.PaceMax,
		}),
	}

	if !cfg.PublishEnabled {
		return deps, nil
	}

	redisPublisher := publisher.NewRedisPublisher(ctx, publisher.RedisOptions{
		Addr:            cfg.RedisAddr,
		DB:              cfg.RedisDB,
		StreamPrefix:    cfg.RedisStream,
		StreamCount:     cfg.RedisStreamCount,
		StreamMaxLength: cfg.RedisStreamMaxLength,
	})
	if err := redisPublisher.Ping(); err != nil {
		_ = redisPublisher.Close()
		return nil, err
	}
	deps.Publisher = redisPublisher

	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	return deps, nil
}
