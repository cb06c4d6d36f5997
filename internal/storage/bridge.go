package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gasledger/internal/core"
	"gasledger/internal/log"
)

// Bridge maps a LedgerState onto the three slots. Writes are independent, so
// a failure part way through can leave the slots out of step with each other.
type Bridge struct {
	slots  Slots
	logger *log.Logger
}

func NewBridge(slots Slots, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Bridge{slots: slots, logger: logger.WithComponent(log.ComponentStorage)}
}

// Load reads the ledger. It never fails: a missing or unreadable list is
// empty and a missing date is "".
func (b *Bridge) Load(ctx context.Context) core.LedgerState {
	state := core.LedgerState{
		Sales:    loadList[core.SaleEntry](ctx, b, KeySales),
		Expenses: loadList[core.ExpenseEntry](ctx, b, KeyExpenses),
	}

	date, err := b.slots.Get(ctx, KeyActiveDate)
	switch {
	case err == nil:
		state.ActiveDate = date
	case !errors.Is(err, ErrSlotNotFound):
		b.logger.WarnContext(ctx, "Failed to read active date, using empty date",
			log.FieldSlot, KeyActiveDate, log.FieldError, err)
	}

	b.logger.InfoContext(ctx, "Ledger loaded", log.NewFields().
		WithOperation(log.OpLoad).
		WithLedger(state.ActiveDate, len(state.Sales), len(state.Expenses)).
		ToSlice()...)
	return state
}

// Save writes all three slots. Every slot is attempted; the returned error
// joins the failures.
func (b *Bridge) Save(ctx context.Context, state core.LedgerState) error {
	state = state.Clone()
	var errs []error

	if err := b.saveJSON(ctx, KeySales, state.Sales); err != nil {
		errs = append(errs, err)
	}
	if err := b.saveJSON(ctx, KeyExpenses, state.Expenses); err != nil {
		errs = append(errs, err)
	}
	if err := b.slots.Set(ctx, KeyActiveDate, state.ActiveDate); err != nil {
		errs = append(errs, fmt.Errorf("write %s: %w", KeyActiveDate, err))
	}
	return errors.Join(errs...)
}

func (b *Bridge) saveJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.slots.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func loadList[T any](ctx context.Context, b *Bridge, key string) []T {
	raw, err := b.slots.Get(ctx, key)
	if errors.Is(err, ErrSlotNotFound) {
		return []T{}
	}
	if err != nil {
		b.logger.WarnContext(ctx, "Failed to read slot, starting empty", log.FieldSlot, key, log.FieldError, err)
		return []T{}
	}

	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		b.logger.WarnContext(ctx, "Corrupted slot, starting empty", log.FieldSlot, key, log.FieldError, err)
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}
