package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"gasledger/internal/amqp"
	"gasledger/internal/cli"
	"gasledger/internal/core"
	"gasledger/internal/export"
	apphttp "gasledger/internal/http"
	"gasledger/internal/ledger"
	"gasledger/internal/log"
	"gasledger/internal/services"
	"gasledger/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	bridge, backendRes, err := cli.OpenBridge(startCtx, cfg, logger)
	if err != nil {
		cancelStart()
		logger.Error("Failed to open storage backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	initial := bridge.Load(startCtx)
	cancelStart()

	// Change notifications are optional; without AMQP_URL the ledger is only
	// persisted.
	var notifier services.Notifier
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without notifications", log.FieldError, err)
		} else {
			notifier = amqpClient
		}
	}

	persister := services.NewLedgerSync(bridge, notifier, logger, amqpCloser(amqpClient), backendRes)
	store := ledger.New(initial, persister, logger)

	currency := core.MustCurrency(cfg.CurrencyCode)
	srv := apphttp.NewServer(apphttp.Options{
		Addr:          ":" + cfg.Port,
		Store:         store,
		Exporter:      export.NewExporter(cfg.BusinessName, currency, cfg.PDFFontPath, logger),
		Currency:      currency,
		StrictNumbers: cfg.StrictNumbers,
		Logger:        logger,
		Ready: func(ctx context.Context) error {
			_, err := backendRes.Slots.Get(ctx, storage.KeyActiveDate)
			if errors.Is(err, storage.ErrSlotNotFound) {
				return nil
			}
			return err
		},
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := persister.Close(); err != nil {
			logger.Error("Failed to release resources", log.FieldError, err)
		}
	})

	logger.Info("Starting gasledger server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		log.FieldActiveDate, initial.ActiveDate,
		"sales", len(initial.Sales),
		"expenses", len(initial.Expenses),
		"strict_numbers", cfg.StrictNumbers)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// amqpCloser keeps a nil client from becoming a non-nil io.Closer.
func amqpCloser(c *amqp.Client) io.Closer {
	if c == nil {
		return nil
	}
	return c
}
