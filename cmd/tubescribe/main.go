package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/veldt-labs/tubescribe/internal/api"
	"github.com/veldt-labs/tubescribe/internal/artifact"
	"github.com/veldt-labs/tubescribe/internal/config"
	"github.com/veldt-labs/tubescribe/internal/extract"
	"github.com/veldt-labs/tubescribe/internal/jobs"
	"github.com/veldt-labs/tubescribe/internal/metrics"
	"github.com/veldt-labs/tubescribe/internal/pipeline"
	"github.com/veldt-labs/tubescribe/internal/sweep"
)

var version = "dev"

func main() {
	startTime := time.Now()

	var overrides config.Overrides
	flag.StringVar(&overrides.EnvFile, "env-file", "", "path to .env file")
	flag.StringVar(&overrides.HTTPAddr, "addr", "", "http listen address")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.StringVar(&overrides.ScratchDir, "scratch-dir", "", "scratch directory for audio artifacts")
	flag.Parse()

	// Config
	cfg, err := config.Load(overrides)
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	// Logger
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	log.Info().Str("version", version).Msg("tubescribe starting")

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Artifact scratch store
	artifacts, err := artifact.NewStore(cfg.ScratchDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init artifact store")
	}

	// Job registry, extractor, pipeline
	registry := jobs.NewStore()
	extractor := extract.New(cfg.YtdlpPath, cfg.ExtractTimeout, log)
	pl := pipeline.New(registry, artifacts, extractor, pipeline.Config{
		DefaultLanguage: cfg.DefaultLanguage,
		ProviderTimeout: cfg.ProviderTimeout,
	}, log)

	// Scrape-time gauges over live registry and scratch state
	prometheus.MustRegister(metrics.NewCollector(registry, artifacts))

	// Retention sweeper
	sweeper := sweep.New(registry, artifacts, cfg.Retention, cfg.SweepInterval, log)
	sweeper.Start()
	defer sweeper.Stop()

	// HTTP server
	httpLog := log.With().Str("component", "http").Logger()
	srv := api.NewServer(cfg, pl, version, startTime, httpLog)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	// Graceful shutdown with 10s timeout. In-flight background jobs are
	// abandoned; their records die with the process.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	log.Info().Msg("tubescribe stopped")
}
