package main

import (
	"context"
	"errors"
	"os"
	"time"

	"gasledger/internal/amqp"
	"gasledger/internal/cli"
	"gasledger/internal/log"
	"gasledger/internal/sheets"
	gsheet "gasledger/internal/sheets/google"
	mem "gasledger/internal/sheets/memory"
	"gasledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting gasledger-worker", log.FieldOperation, log.OpStartup)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.DataBackend == "memory" {
		logger.Warn("Memory backend is per process; the worker will only ever see an empty ledger")
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	bridge, backendRes, err := cli.OpenBridge(startCtx, cfg, logger)
	if err != nil {
		cancelStart()
		logger.Error("Failed to open storage backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer backendRes.Close()

	var publisher sheets.LedgerPublisher
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(startCtx, logger)
		if err != nil {
			cancelStart()
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		publisher = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		publisher = mem.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, mirroring in memory")
	}

	syncWorker := worker.NewSyncWorker(bridge, publisher, logger)
	if err := syncWorker.Resync(startCtx); err != nil {
		logger.Error("Startup resync failed", log.FieldError, err)
	}
	cancelStart()

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
	} else {
		logger.Info("AMQP disabled - relying on periodic resync only")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("Failed to close AMQP client", log.FieldError, err)
			}
		}
	})

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeWithRetry(ctx, syncWorker.HandleLedgerChanged)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
		}()
	}

	go func() {
		if err := syncWorker.Run(ctx, cfg.SyncInterval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Periodic resync stopped", log.FieldError, err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped", "last_synced", syncWorker.LastSynced())
}
