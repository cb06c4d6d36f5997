// Package memory is an in-process LedgerPublisher for local runs and tests.
package memory

import (
	"context"
	"sync"

	"gasledger/internal/core"
	ports "gasledger/internal/sheets"
)

type Store struct {
	mu        sync.Mutex
	last      core.LedgerState
	published int
	err       error
}

var _ ports.LedgerPublisher = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// FailWith makes subsequent publishes return err. nil restores success.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Store) PublishLedger(_ context.Context, state core.LedgerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.last = state.Clone()
	s.published++
	return nil
}

// Last returns the most recent published snapshot and how many publishes
// succeeded.
func (s *Store) Last() (core.LedgerState, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.Clone(), s.published
}
