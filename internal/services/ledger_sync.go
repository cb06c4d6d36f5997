// Package services connects the ledger store to storage and notifications.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"gasledger/internal/core"
	"gasledger/internal/ledger"
	"gasledger/internal/log"
)

// Saver writes a ledger snapshot to durable storage.
type Saver interface {
	Save(ctx context.Context, state core.LedgerState) error
}

// Notifier announces that a ledger snapshot was saved.
type Notifier interface {
	PublishLedgerChanged(ctx context.Context, state core.LedgerState) error
}

// LedgerSync is the store's persister: it saves through the bridge and then
// queues a change notification. Only the save decides the result.
//
// Notifications are published by one background goroutine. When the broker
// is slow, pending notifications collapse into the newest one.
type LedgerSync struct {
	saver    Saver
	notifier Notifier
	closers  []io.Closer
	logger   *log.Logger

	mu        sync.Mutex
	closed    bool
	pending   chan notification
	published chan struct{}
	closeOnce sync.Once
}

type notification struct {
	ctx   context.Context
	state core.LedgerState
}

var _ ledger.Persister = (*LedgerSync)(nil)

// NewLedgerSync creates the persister. notifier may be nil. closers are
// closed by Close in order.
func NewLedgerSync(saver Saver, notifier Notifier, logger *log.Logger, closers ...io.Closer) *LedgerSync {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &LedgerSync{
		saver:     saver,
		notifier:  notifier,
		closers:   closers,
		logger:    logger.WithComponent(log.ComponentStorage),
		pending:   make(chan notification, 1),
		published: make(chan struct{}),
	}
	if notifier != nil {
		go s.publishLoop()
	} else {
		close(s.published)
	}
	return s
}

func (s *LedgerSync) Save(ctx context.Context, state core.LedgerState) error {
	if err := s.saver.Save(ctx, state); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save ledger",
			log.FieldOperation, log.OpSave, log.FieldError, err)
		return fmt.Errorf("save ledger: %w", err)
	}

	if s.notifier != nil {
		s.enqueue(notification{ctx: context.WithoutCancel(ctx), state: state})
	}
	return nil
}

// enqueue replaces any notification not yet picked up by the publisher.
func (s *LedgerSync) enqueue(n notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.pending <- n:
			return
		default:
			select {
			case <-s.pending:
			default:
			}
		}
	}
}

func (s *LedgerSync) publishLoop() {
	defer close(s.published)
	for n := range s.pending {
		if err := s.notifier.PublishLedgerChanged(n.ctx, n.state); err != nil {
			s.logger.WarnContext(n.ctx, "Failed to publish ledger changed message",
				log.FieldOperation, log.OpPublish, log.FieldError, err)
		}
	}
}

// Close publishes the last queued notification, then closes the closers in
// order.
func (s *LedgerSync) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.pending)
		s.mu.Unlock()
	})
	<-s.published

	var errs []error
	for _, c := range s.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
