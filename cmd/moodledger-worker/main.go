package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"moodledger/internal/amqp"
	"moodledger/internal/analytics"
	"moodledger/internal/config"
	applog "moodledger/internal/log"
	"moodledger/internal/storage"
	"moodledger/internal/worker"
)

// recheckInterval is the backup impulse re-evaluation cadence, covering
// alert messages lost between server and broker.
const recheckInterval = 15 * time.Minute

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open ledger store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer func() { _ = repo.Close() }()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to broker", "error", err, "exchange", cfg.AMQPExchange)
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	alertWorker := worker.NewAlertWorker(analytics.NewEngine(repo))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := client.Consume(gctx, alertWorker.HandleExpenseRecorded, alertWorker.HandleImpulseAlert)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		ticker := time.NewTicker(recheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := alertWorker.RecheckToday(gctx); err != nil {
					logger.Error("Periodic impulse recheck failed", "error", err)
				}
			}
		}
	})

	logger.Info("Worker started", "queue", cfg.AMQPQueue)
	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
