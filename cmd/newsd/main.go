package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ObaidOIS/TSFSE/internal/classify"
	"github.com/ObaidOIS/TSFSE/internal/config"
	"github.com/ObaidOIS/TSFSE/internal/database"
	"github.com/ObaidOIS/TSFSE/internal/fetch"
	"github.com/ObaidOIS/TSFSE/internal/index"
	"github.com/ObaidOIS/TSFSE/internal/ingest"
	"github.com/ObaidOIS/TSFSE/internal/search"
	"github.com/ObaidOIS/TSFSE/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer zlog.Sync()
	logger := zlog.Sugar()

	logger.Infow("starting newsd")

	// Connect to database and prepare the schema
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	if err := db.SeedCategories(ctx, database.DefaultCategories()); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	logger.Infow("connected to database")

	// Build the categorizer from stored keyword tables
	tables, err := db.KeywordTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to load keyword tables: %w", err)
	}
	categorizer := classify.New(tables, classify.NewRegexEntityExtractor(), classify.Config{
		TitleBoost:           cfg.TitleBoost,
		MaxKeywords:          cfg.MaxKeywords,
		SuppressionThreshold: cfg.SuppressionThreshold,
		DefaultCategory:      cfg.DefaultCategory,
	})

	indexer := index.New(index.Weights{
		Title:   cfg.TitleWeight,
		Summary: cfg.SummaryWeight,
		Content: cfg.ContentWeight,
	})

	fetcher := fetch.New(fetch.Config{
		Timeout:      cfg.FetchTimeout,
		FetchContent: cfg.FetchContent,
		MaxPerFeed:   cfg.MaxPerCycle,
	}, logger)

	scheduler, err := ingest.New(ingest.Config{
		FeedURLs:    cfg.FeedURLs,
		Interval:    cfg.IngestInterval,
		Active:      cfg.IngestActive,
		Workers:     cfg.IngestWorkers,
		MaxPerCycle: cfg.MaxPerCycle,
		HistorySize: cfg.HistorySize,
	}, fetcher, db, categorizer, indexer, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	go scheduler.Run(ctx)

	engine := search.New(db, categorizer, search.Config{
		SuppressionThreshold: cfg.SuppressionThreshold,
		RecencyHalfLife:      cfg.RecencyHalfLife,
		RecencyWeight:        cfg.RecencyWeight,
		CategoryBoost:        cfg.CategoryBoost,
		MaxCandidates:        cfg.MaxCandidates,
	}, logger)

	srv := server.New(db, engine, scheduler, cfg, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Infow("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
