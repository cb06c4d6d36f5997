// Package ledger owns the day's ledger: the ordered sale and expense lists,
// the active date, and one edit slot per list. Every change is handed to a
// Persister as a full snapshot.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gasledger/internal/core"
	"gasledger/internal/log"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNotEditing      = errors.New("no edit in progress")
)

// Persister receives the whole ledger after every change, outside the store
// lock. Errors are logged by the store and otherwise ignored.
type Persister interface {
	Save(ctx context.Context, state core.LedgerState) error
}

// PersisterFunc adapts a function to Persister.
type PersisterFunc func(ctx context.Context, state core.LedgerState) error

func (f PersisterFunc) Save(ctx context.Context, state core.LedgerState) error {
	return f(ctx, state)
}

// Store serializes all mutations; each one replaces the state with a new
// snapshot and persists it before returning. Reads never wait on a save.
type Store struct {
	mu          sync.Mutex
	state       core.LedgerState
	version     uint64
	saleEdit    *Draft[core.SaleEntry]
	expenseEdit *Draft[core.ExpenseEntry]

	// saveMu orders saves; savedVersion drops snapshots older than one
	// already saved.
	saveMu       sync.Mutex
	savedVersion uint64
	persister    Persister
	logger       *log.Logger
}

// New creates a store holding initial. persister may be nil.
func New(initial core.LedgerState, persister Persister, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		state:     initial.Clone(),
		persister: persister,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// State returns a snapshot of the ledger.
func (s *Store) State() core.LedgerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Totals recomputes the derived figures from the current entries.
func (s *Store) Totals() core.Totals {
	return core.Summarize(s.State())
}

// AddSale appends a sale stamped with the active date.
func (s *Store) AddSale(ctx context.Context, in core.SaleInput) core.LedgerState {
	state, _ := s.update(ctx, log.OpAddSale, func() (core.LedgerState, error) {
		next := s.state.Clone()
		next.Sales = append(next.Sales, core.SaleEntry{
			Cylinders: in.Cylinders,
			Price:     in.Price,
			Note:      in.Note,
			Date:      s.state.ActiveDate,
		})
		return next, nil
	})
	return state
}

// AddExpense appends an expense stamped with the active date.
func (s *Store) AddExpense(ctx context.Context, in core.ExpenseInput) core.LedgerState {
	state, _ := s.update(ctx, log.OpAddExpense, func() (core.LedgerState, error) {
		next := s.state.Clone()
		next.Expenses = append(next.Expenses, core.ExpenseEntry{
			Name:   in.Name,
			Amount: in.Amount,
			Date:   s.state.ActiveDate,
		})
		return next, nil
	})
	return state
}

// DeleteSaleAt removes the sale at index; later entries shift down by one.
// An index outside the list leaves the ledger untouched and returns
// ErrIndexOutOfRange.
func (s *Store) DeleteSaleAt(ctx context.Context, index int) (core.LedgerState, error) {
	return s.update(ctx, log.OpDeleteSale, func() (core.LedgerState, error) {
		sales, ok := removeAt(s.state.Sales, index)
		if !ok {
			return core.LedgerState{}, s.outOfRange(ctx, log.OpDeleteSale, index, len(s.state.Sales))
		}
		next := s.state.Clone()
		next.Sales = sales
		return next, nil
	})
}

// DeleteExpenseAt removes the expense at index.
func (s *Store) DeleteExpenseAt(ctx context.Context, index int) (core.LedgerState, error) {
	return s.update(ctx, log.OpDeleteExpense, func() (core.LedgerState, error) {
		expenses, ok := removeAt(s.state.Expenses, index)
		if !ok {
			return core.LedgerState{}, s.outOfRange(ctx, log.OpDeleteExpense, index, len(s.state.Expenses))
		}
		next := s.state.Clone()
		next.Expenses = expenses
		return next, nil
	})
}

// BeginEditSale starts editing the sale at index and returns its draft. An
// edit already in progress is discarded.
func (s *Store) BeginEditSale(ctx context.Context, index int) (Draft[core.SaleEntry], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := beginEdit(s.state.Sales, index)
	if !ok {
		return Draft[core.SaleEntry]{}, s.outOfRange(ctx, log.OpEditSale, index, len(s.state.Sales))
	}
	s.saleEdit = d
	return *d, nil
}

// BeginEditExpense starts editing the expense at index.
func (s *Store) BeginEditExpense(ctx context.Context, index int) (Draft[core.ExpenseEntry], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := beginEdit(s.state.Expenses, index)
	if !ok {
		return Draft[core.ExpenseEntry]{}, s.outOfRange(ctx, log.OpEditExpense, index, len(s.state.Expenses))
	}
	s.expenseEdit = d
	return *d, nil
}

// SaleEdit returns the sale edit in progress, if any.
func (s *Store) SaleEdit() (Draft[core.SaleEntry], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saleEdit == nil {
		return Draft[core.SaleEntry]{}, false
	}
	return *s.saleEdit, true
}

// ExpenseEdit returns the expense edit in progress, if any.
func (s *Store) ExpenseEdit() (Draft[core.ExpenseEntry], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expenseEdit == nil {
		return Draft[core.ExpenseEntry]{}, false
	}
	return *s.expenseEdit, true
}

// CommitEditSale writes entry over the position captured by BeginEditSale,
// re-stamped with the date active now, and leaves edit mode. Whatever sits at
// that position at commit time is overwritten.
func (s *Store) CommitEditSale(ctx context.Context, entry core.SaleEntry) (core.LedgerState, error) {
	return s.update(ctx, log.OpCommitSale, func() (core.LedgerState, error) {
		if s.saleEdit == nil {
			return core.LedgerState{}, s.notEditing(ctx, log.OpCommitSale)
		}
		index := s.saleEdit.Index
		s.saleEdit = nil

		entry.Date = s.state.ActiveDate
		sales, ok := replaceAt(s.state.Sales, index, entry)
		if !ok {
			return core.LedgerState{}, s.outOfRange(ctx, log.OpCommitSale, index, len(s.state.Sales))
		}
		next := s.state.Clone()
		next.Sales = sales
		return next, nil
	})
}

// CommitEditExpense is CommitEditSale for the expense list.
func (s *Store) CommitEditExpense(ctx context.Context, entry core.ExpenseEntry) (core.LedgerState, error) {
	return s.update(ctx, log.OpCommitExpense, func() (core.LedgerState, error) {
		if s.expenseEdit == nil {
			return core.LedgerState{}, s.notEditing(ctx, log.OpCommitExpense)
		}
		index := s.expenseEdit.Index
		s.expenseEdit = nil

		entry.Date = s.state.ActiveDate
		expenses, ok := replaceAt(s.state.Expenses, index, entry)
		if !ok {
			return core.LedgerState{}, s.outOfRange(ctx, log.OpCommitExpense, index, len(s.state.Expenses))
		}
		next := s.state.Clone()
		next.Expenses = expenses
		return next, nil
	})
}

// SetActiveDate changes the date used for new and edited entries. Existing
// entries keep the date they were stamped with.
func (s *Store) SetActiveDate(ctx context.Context, date string) core.LedgerState {
	state, _ := s.update(ctx, log.OpSetDate, func() (core.LedgerState, error) {
		next := s.state.Clone()
		next.ActiveDate = date
		return next, nil
	})
	return state
}

// update runs change under s.mu and installs the state it returns. The new
// snapshot is persisted after the lock is released. When change fails the
// ledger is untouched and the current state is returned with the error.
func (s *Store) update(ctx context.Context, op string, change func() (core.LedgerState, error)) (core.LedgerState, error) {
	s.mu.Lock()
	next, err := change()
	if err != nil {
		current := s.state.Clone()
		s.mu.Unlock()
		return current, err
	}
	s.state = next
	s.version++
	version := s.version
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Ledger updated", log.NewFields().
		WithOperation(op).
		WithLedger(next.ActiveDate, len(next.Sales), len(next.Expenses)).
		ToSlice()...)
	s.persist(ctx, op, next.Clone(), version)
	return next.Clone(), nil
}

// persist hands snapshot to the persister unless a newer one was already
// saved by a concurrent writer.
func (s *Store) persist(ctx context.Context, op string, snapshot core.LedgerState, version uint64) {
	if s.persister == nil {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if version <= s.savedVersion {
		return
	}
	s.savedVersion = version
	if err := s.persister.Save(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist ledger", log.NewFields().
			WithOperation(op).
			WithError(err).
			ToSlice()...)
	}
}

func (s *Store) outOfRange(ctx context.Context, op string, index, length int) error {
	s.logger.WarnContext(ctx, "Ignoring ledger operation on missing entry", log.NewFields().
		WithOperation(op).
		WithIndex(index, length).
		ToSlice()...)
	return fmt.Errorf("%s at %d (length %d): %w", op, index, length, ErrIndexOutOfRange)
}

func (s *Store) notEditing(ctx context.Context, op string) error {
	s.logger.WarnContext(ctx, "Ignoring commit without edit", log.NewFields().
		WithOperation(op).
		ToSlice()...)
	return fmt.Errorf("%s: %w", op, ErrNotEditing)
}
