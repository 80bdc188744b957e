package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tempo/internal/amqp"
	"tempo/internal/config"
	applog "tempo/internal/log"
	"tempo/internal/store"
	"tempo/internal/store/memory"
	"tempo/internal/store/sqlite"
	"tempo/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting tempo-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	var st store.Store
	switch cfg.DataBackend {
	case "sqlite":
		sqlStore, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer sqlStore.Close()
		st = sqlStore
	default:
		// Memory is only useful for local experiments: the feed dies with
		// the process.
		st = memory.New()
		logger.Warn("Using memory backend, activity feed will not persist")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	activityWorker := worker.NewActivityWorker(st, cfg.ActivityLimit, logger)

	// Consume until shutdown, reconnecting on connection loss.
	for {
		client, err := amqp.Reconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error("Failed to connect to AMQP", applog.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Consuming activity events", "queue", cfg.AMQPQueue, "limit", cfg.ActivityLimit)

		err = client.ConsumeActivity(ctx, activityWorker.HandleActivityMessage)
		client.Close()
		if errors.Is(err, context.Canceled) {
			break
		}
		logger.Warn("Consumption interrupted, reconnecting", applog.FieldError, err)
	}

	logger.Info("Worker stopped gracefully")
}
