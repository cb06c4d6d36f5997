package core

// Totals are the derived daily figures. They are recomputed from the entries
// on every read and never stored.
type Totals struct {
	Cylinders Figure
	Income    Figure
	Expenses  Figure
	Balance   Figure
}

// Summarize scans the state once. A NaN field anywhere makes the totals that
// include it NaN; nothing is skipped.
func Summarize(state LedgerState) Totals {
	var t Totals
	for _, e := range state.Sales {
		t.Cylinders = t.Cylinders.Add(FigureOf(e.Cylinders))
		t.Income = t.Income.Add(e.Income())
	}
	for _, e := range state.Expenses {
		t.Expenses = t.Expenses.Add(FigureOf(e.Amount))
	}
	t.Balance = t.Income.Sub(t.Expenses)
	return t
}
