package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"moodledger/internal/amqp"
	"moodledger/internal/analytics"
	"moodledger/internal/classify"
	"moodledger/internal/config"
	"moodledger/internal/goals"
	apphttp "moodledger/internal/http"
	"moodledger/internal/intake"
	applog "moodledger/internal/log"
	"moodledger/internal/ocr"
	"moodledger/internal/sheets"
	"moodledger/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open ledger store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer func() { _ = repo.Close() }()

	classifier, err := classify.LoadFrozen(cfg.ModelPath)
	if err != nil {
		logger.Error("Failed to load classifier model", "error", err, "path", cfg.ModelPath)
		os.Exit(1)
	}
	logger.Info("Classifier model loaded", "path", cfg.ModelPath, "labels", classifier.Labels())

	extractor := ocr.NewTesseract(cfg.OCRLanguage)

	var publisher intake.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Events are a side channel; the ledger works without them.
			logger.Warn("Event publishing disabled", "error", err)
		} else {
			defer func() { _ = client.Close() }()
			publisher = client
			logger.Info("Event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var mirror goals.Mirror
	if cfg.GoalSpreadsheetID != "" {
		m, err := sheets.NewFromEnv(context.Background())
		if err != nil {
			logger.Warn("Goal mirroring disabled", "error", err)
		} else {
			mirror = m
			logger.Info("Goal mirroring enabled", "spreadsheet_id", cfg.GoalSpreadsheetID)
		}
	}

	engine := analytics.NewEngine(repo)
	pipeline := intake.NewPipeline(repo, classifier, extractor, nil, engine, publisher)
	tracker := goals.NewTracker(repo, mirror)

	srv := apphttp.NewServer(":"+cfg.Port, pipeline, engine, tracker, repo, repo)
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting moodledger server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
