package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasledger/internal/core"
	"gasledger/internal/log"
)

// recordingPersister keeps every snapshot it is given.
type recordingPersister struct {
	saved []core.LedgerState
	err   error
}

func (p *recordingPersister) Save(_ context.Context, state core.LedgerState) error {
	p.saved = append(p.saved, state)
	return p.err
}

func (p *recordingPersister) last() core.LedgerState {
	return p.saved[len(p.saved)-1]
}

func newStore(t *testing.T, date string) (*Store, *recordingPersister) {
	t.Helper()
	p := &recordingPersister{}
	return New(core.LedgerState{ActiveDate: date}, p, log.Discard()), p
}

func TestAddSaleScenario(t *testing.T) {
	ctx := context.Background()
	s, p := newStore(t, "2024-01-01")

	state := s.AddSale(ctx, core.SaleInput{Cylinders: 5, Price: 900, Note: "cash"})
	require.Len(t, state.Sales, 1)
	assert.Equal(t, core.SaleEntry{Cylinders: 5, Price: 900, Note: "cash", Date: "2024-01-01"}, state.Sales[0])

	totals := s.Totals()
	assert.Equal(t, "4500.00", totals.Income.Fixed(2))
	assert.Equal(t, "5", totals.Cylinders.String())

	require.Len(t, p.saved, 1)
	assert.Equal(t, state, p.last())
}

func TestExpenseThenSaleBalance(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "2024-01-01")

	s.AddExpense(ctx, core.ExpenseInput{Name: "fuel", Amount: 300})
	s.AddSale(ctx, core.SaleInput{Cylinders: 2, Price: 900})

	totals := s.Totals()
	assert.Equal(t, "1800.00", totals.Income.Fixed(2))
	assert.Equal(t, "1500.00", totals.Balance.Fixed(2))
}

func TestTotalCylindersMatchesAdds(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "")
	counts := []core.Number{3, 0, 12, 1.5, 7}
	for _, c := range counts {
		s.AddSale(ctx, core.SaleInput{Cylinders: c, Price: 10})
	}
	assert.Equal(t, "23.5", s.Totals().Cylinders.String())
}

func TestInsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "2024-01-02")
	s.AddSale(ctx, core.SaleInput{Cylinders: 9, Price: 1, Note: "first"})
	s.SetActiveDate(ctx, "2024-01-01")
	s.AddSale(ctx, core.SaleInput{Cylinders: 1, Price: 1, Note: "second"})

	state := s.State()
	assert.Equal(t, "first", state.Sales[0].Note)
	assert.Equal(t, "second", state.Sales[1].Note)
}

func TestNonNumericInputIsStoredPoisoned(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "2024-01-01")
	s.AddSale(ctx, core.SaleInput{Cylinders: core.CoerceNumber("five"), Price: 900})
	s.AddExpense(ctx, core.ExpenseInput{Name: "fuel", Amount: 300})

	state := s.State()
	require.Len(t, state.Sales, 1)
	assert.False(t, state.Sales[0].Cylinders.IsValid())

	totals := s.Totals()
	assert.False(t, totals.Income.IsValid())
	assert.False(t, totals.Balance.IsValid())
	assert.True(t, totals.Expenses.IsValid())
}

func TestDeleteShiftsFollowingEntries(t *testing.T) {
	ctx := context.Background()
	s, p := newStore(t, "d")
	for _, n := range []string{"a", "b", "c", "d"} {
		s.AddSale(ctx, core.SaleInput{Cylinders: 1, Price: 1, Note: n})
	}

	state, err := s.DeleteSaleAt(ctx, 1)
	require.NoError(t, err)
	require.Len(t, state.Sales, 3)
	assert.Equal(t, []string{"a", "c", "d"}, notes(state.Sales))
	assert.Len(t, p.saved, 5)
}

func TestDeleteOutOfRangeIsNoop(t *testing.T) {
	ctx := context.Background()
	s, p := newStore(t, "d")
	s.AddExpense(ctx, core.ExpenseInput{Name: "fuel", Amount: 300})

	for _, idx := range []int{-1, 1, 5} {
		state, err := s.DeleteExpenseAt(ctx, idx)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.Len(t, state.Expenses, 1)
	}
	_, err := s.DeleteSaleAt(ctx, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Len(t, p.saved, 1, "no-op deletes must not persist")
}

func TestEditReplacesOnlyTargetAndRestamps(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "2024-01-01")
	s.AddSale(ctx, core.SaleInput{Cylinders: 5, Price: 900, Note: "cash"})
	s.AddSale(ctx, core.SaleInput{Cylinders: 2, Price: 880, Note: "upi"})
	s.AddSale(ctx, core.SaleInput{Cylinders: 1, Price: 870, Note: "credit"})
	before := s.State()

	draft, err := s.BeginEditSale(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, draft.Index)
	assert.Equal(t, before.Sales[0], draft.Entry)

	s.SetActiveDate(ctx, "2024-01-02")
	edited := draft.Entry
	edited.Price = 950

	state, err := s.CommitEditSale(ctx, edited)
	require.NoError(t, err)
	assert.Equal(t, core.SaleEntry{Cylinders: 5, Price: 950, Note: "cash", Date: "2024-01-02"}, state.Sales[0])
	assert.Equal(t, before.Sales[1:], state.Sales[1:])

	_, editing := s.SaleEdit()
	assert.False(t, editing)
}

func TestCommitWithoutBeginIsNoop(t *testing.T) {
	ctx := context.Background()
	s, p := newStore(t, "d")
	s.AddExpense(ctx, core.ExpenseInput{Name: "fuel", Amount: 300})

	_, err := s.CommitEditExpense(ctx, core.ExpenseEntry{Name: "x"})
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.Equal(t, "fuel", s.State().Expenses[0].Name)
	assert.Len(t, p.saved, 1)
}

func TestBeginEditSwitchesTarget(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "d")
	s.AddExpense(ctx, core.ExpenseInput{Name: "fuel", Amount: 300})
	s.AddExpense(ctx, core.ExpenseInput{Name: "tea", Amount: 40})

	_, err := s.BeginEditExpense(ctx, 0)
	require.NoError(t, err)
	_, err = s.BeginEditExpense(ctx, 1)
	require.NoError(t, err)

	d, ok := s.ExpenseEdit()
	require.True(t, ok)
	assert.Equal(t, 1, d.Index)

	state, err := s.CommitEditExpense(ctx, core.ExpenseEntry{Name: "snacks", Amount: 60})
	require.NoError(t, err)
	assert.Equal(t, "fuel", state.Expenses[0].Name)
	assert.Equal(t, core.ExpenseEntry{Name: "snacks", Amount: 60, Date: "d"}, state.Expenses[1])
}

func TestEditSlotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "d")
	s.AddSale(ctx, core.SaleInput{Cylinders: 1, Price: 1})
	s.AddExpense(ctx, core.ExpenseInput{Name: "fuel", Amount: 300})

	_, err := s.BeginEditSale(ctx, 0)
	require.NoError(t, err)
	_, err = s.BeginEditExpense(ctx, 0)
	require.NoError(t, err)

	_, err = s.CommitEditExpense(ctx, core.ExpenseEntry{Name: "diesel", Amount: 310})
	require.NoError(t, err)

	_, saleEditing := s.SaleEdit()
	assert.True(t, saleEditing)
}

func TestBeginEditOutOfRangeKeepsCurrentEdit(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "d")
	s.AddSale(ctx, core.SaleInput{Cylinders: 1, Price: 1})
	_, err := s.BeginEditSale(ctx, 0)
	require.NoError(t, err)

	_, err = s.BeginEditSale(ctx, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	d, ok := s.SaleEdit()
	require.True(t, ok)
	assert.Equal(t, 0, d.Index)
}

func TestCommitAfterTargetDeleted(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "d")
	s.AddSale(ctx, core.SaleInput{Cylinders: 1, Price: 1, Note: "a"})
	s.AddSale(ctx, core.SaleInput{Cylinders: 2, Price: 1, Note: "b"})

	_, err := s.BeginEditSale(ctx, 1)
	require.NoError(t, err)
	_, err = s.DeleteSaleAt(ctx, 0)
	require.NoError(t, err)

	state, err := s.CommitEditSale(ctx, core.SaleEntry{Cylinders: 9, Note: "z"})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, []string{"b"}, notes(state.Sales))

	_, editing := s.SaleEdit()
	assert.False(t, editing)
}

func TestSetActiveDateDoesNotRestamp(t *testing.T) {
	ctx := context.Background()
	s, p := newStore(t, "2024-01-01")
	s.AddSale(ctx, core.SaleInput{Cylinders: 1, Price: 1})

	state := s.SetActiveDate(ctx, "2024-02-01")
	assert.Equal(t, "2024-02-01", state.ActiveDate)
	assert.Equal(t, "2024-01-01", state.Sales[0].Date)
	assert.Equal(t, "2024-02-01", p.last().ActiveDate)
}

func TestPersistFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	p := &recordingPersister{err: errors.New("quota exceeded")}
	s := New(core.LedgerState{}, p, log.Discard())

	state := s.AddSale(ctx, core.SaleInput{Cylinders: 1, Price: 1})
	assert.Len(t, state.Sales, 1)
	assert.Len(t, s.State().Sales, 1)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "d")
	state := s.AddSale(ctx, core.SaleInput{Cylinders: 1, Price: 1})
	state.Sales[0].Cylinders = 100

	assert.Equal(t, core.Number(1), s.State().Sales[0].Cylinders)
}

func TestNilPersister(t *testing.T) {
	s := New(core.LedgerState{}, nil, nil)
	state := s.AddExpense(context.Background(), core.ExpenseInput{Name: "x", Amount: 1})
	assert.Len(t, state.Expenses, 1)
}

func notes(sales []core.SaleEntry) []string {
	out := make([]string, len(sales))
	for i, e := range sales {
		out[i] = e.Note
	}
	return out
}

// blockingPersister holds every save until release is closed.
type blockingPersister struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingPersister) Save(ctx context.Context, _ core.LedgerState) error {
	select {
	case p.started <- struct{}{}:
	default:
	}
	<-p.release
	return nil
}

func TestReadsDoNotWaitForSave(t *testing.T) {
	p := &blockingPersister{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := New(core.LedgerState{ActiveDate: "2024-01-01"}, p, log.Discard())

	added := make(chan core.LedgerState)
	go func() { added <- s.AddSale(context.Background(), core.SaleInput{Cylinders: 1, Price: 10}) }()
	<-p.started

	read := make(chan core.LedgerState)
	go func() { read <- s.State() }()
	select {
	case state := <-read:
		assert.Len(t, state.Sales, 1)
		assert.Equal(t, "10", s.Totals().Income.String())
	case <-time.After(time.Second):
		t.Fatal("State() waited for the persister")
	}

	close(p.release)
	assert.Len(t, (<-added).Sales, 1)
}

func TestConcurrentWritesSaveNewestLast(t *testing.T) {
	s, p := newStore(t, "2024-01-01")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddExpense(context.Background(), core.ExpenseInput{Name: "x", Amount: 1})
		}()
	}
	wg.Wait()

	require.NotEmpty(t, p.saved)
	assert.Len(t, p.last().Expenses, 20)
	for i := 1; i < len(p.saved); i++ {
		assert.Greater(t, len(p.saved[i].Expenses), len(p.saved[i-1].Expenses))
	}
}
