// Package worker mirrors the stored ledger into a spreadsheet whenever a
// change is announced, and periodically as a safety net.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gasledger/internal/amqp"
	"gasledger/internal/core"
	"gasledger/internal/log"
	"gasledger/internal/sheets"
)

// Loader reads the current ledger from storage.
type Loader interface {
	Load(ctx context.Context) core.LedgerState
}

type SyncWorker struct {
	loader    Loader
	publisher sheets.LedgerPublisher
	logger    *log.Logger
	now       func() time.Time

	// resyncMu keeps one load and publish pair in flight so an older
	// snapshot can never overwrite a newer one in the sheet.
	resyncMu sync.Mutex

	mu         sync.Mutex
	lastSynced time.Time
}

func NewSyncWorker(loader Loader, publisher sheets.LedgerPublisher, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SyncWorker{
		loader:    loader,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentWorker),
		now:       time.Now,
	}
}

// HandleLedgerChanged mirrors the stored ledger. Messages older than the
// last successful mirror are skipped: that mirror already read a newer state.
func (w *SyncWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.mu.Lock()
	stale := !w.lastSynced.IsZero() && msg.Timestamp.Before(w.lastSynced)
	w.mu.Unlock()
	if stale {
		w.logger.DebugContext(ctx, "Skipping stale ledger changed message",
			log.FieldMessageID, msg.ID)
		return nil
	}

	w.logger.InfoContext(ctx, "Processing ledger changed message",
		log.FieldMessageID, msg.ID,
		log.FieldActiveDate, msg.ActiveDate)
	return w.Resync(ctx)
}

// Resync loads the ledger and publishes it. Concurrent calls run one at a
// time.
func (w *SyncWorker) Resync(ctx context.Context) error {
	w.resyncMu.Lock()
	defer w.resyncMu.Unlock()

	started := w.now()
	state := w.loader.Load(ctx)

	if err := w.publisher.PublishLedger(ctx, state); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mirror ledger",
			log.FieldOperation, log.OpSync, log.FieldError, err)
		return fmt.Errorf("publish ledger: %w", err)
	}

	w.mu.Lock()
	if started.After(w.lastSynced) {
		w.lastSynced = started
	}
	w.mu.Unlock()
	return nil
}

// Run resyncs every interval until ctx is done. A failed resync is logged and
// retried on the next tick.
func (w *SyncWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "Periodic resync started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = w.Resync(ctx)
		}
	}
}

// LastSynced returns when the last successful mirror started.
func (w *SyncWorker) LastSynced() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSynced
}
