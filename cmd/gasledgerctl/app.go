package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gasledger/internal/amqp"
	"gasledger/internal/cli"
	"gasledger/internal/config"
	"gasledger/internal/core"
	"gasledger/internal/export"
	"gasledger/internal/ledger"
	"gasledger/internal/log"
	"gasledger/internal/services"
)

// app is what every command works on: the stored ledger and its report
// settings.
type app struct {
	store    *ledger.Store
	exporter *export.Exporter
	currency core.Currency
	numbers  func(field, raw string) (core.Number, error)
	out      io.Writer
	close    func() error
}

// openApp is replaced in tests.
var openApp = openStoredApp

func openStoredApp(ctx context.Context) (*app, error) {
	cli.LoadEnvFile()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := log.New(log.Config{
		Component: log.ComponentCLI,
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: log.ParseLevel(envOr("LOG_LEVEL", "warn")),
		}),
	})

	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	bridge, backendRes, err := cli.OpenBridge(openCtx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	var notifier services.Notifier
	closers := []io.Closer{backendRes}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, changes will not be announced", log.FieldError, err)
		} else {
			notifier = client
			closers = append(closers, client)
		}
	}

	persister := services.NewLedgerSync(bridge, notifier, logger, closers...)
	currency, err := core.NewCurrency(cfg.CurrencyCode)
	if err != nil {
		_ = persister.Close()
		return nil, err
	}
	return &app{
		store:    ledger.New(bridge.Load(openCtx), persister, logger),
		exporter: export.NewExporter(cfg.BusinessName, currency, cfg.PDFFontPath, logger),
		currency: currency,
		numbers:  numberReader(cfg.StrictNumbers),
		out:      os.Stdout,
		close:    persister.Close,
	}, nil
}

func numberReader(strict bool) func(field, raw string) (core.Number, error) {
	if !strict {
		return func(_, raw string) (core.Number, error) { return core.CoerceNumber(raw), nil }
	}
	return func(field, raw string) (core.Number, error) {
		n, err := core.ParseNonNegativeNumber(raw)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", field, err)
		}
		return n, nil
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
