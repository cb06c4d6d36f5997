package http

import (
	"gasledger/internal/core"
	"gasledger/internal/ledger"
)

type (
	pageData struct {
		Title       string
		Currency    string
		ActiveDate  string
		Sales       []saleRow
		Expenses    []expenseRow
		SaleEdit    *saleDraft
		ExpenseEdit *expenseDraft
		Totals      totalsView
		Strict      bool

		// Set when a strict-mode submission was rejected; the form is
		// re-rendered with what the user typed.
		Error       string
		SaleForm    saleDraft
		ExpenseForm expenseDraft
	}

	saleRow struct {
		Index     int
		Date      string
		Cylinders string
		Price     string
		Note      string
		Income    string
		Editing   bool
	}

	expenseRow struct {
		Index   int
		Date    string
		Name    string
		Amount  string
		Editing bool
	}

	saleDraft struct {
		Index     int
		Cylinders string
		Price     string
		Note      string
	}

	expenseDraft struct {
		Index  int
		Name   string
		Amount string
	}

	totalsView struct {
		Cylinders string
		Income    string
		Expenses  string
		Balance   string
	}
)

// ledgerJSON is the response body for JSON clients.
type ledgerJSON struct {
	ActiveDate string              `json:"activeDate"`
	Sales      []core.SaleEntry    `json:"sales"`
	Expenses   []core.ExpenseEntry `json:"expenses"`
	Totals     totalsJSON          `json:"totals"`
}

type totalsJSON struct {
	Cylinders string `json:"cylinders"`
	Income    string `json:"income"`
	Expenses  string `json:"expenses"`
	Balance   string `json:"balance"`
}

func newTotalsView(t core.Totals, c core.Currency) totalsView {
	return totalsView{
		Cylinders: t.Cylinders.String(),
		Income:    c.Format(t.Income),
		Expenses:  c.Format(t.Expenses),
		Balance:   c.Format(t.Balance),
	}
}

func newLedgerJSON(state core.LedgerState) ledgerJSON {
	t := core.Summarize(state)
	return ledgerJSON{
		ActiveDate: state.ActiveDate,
		Sales:      state.Sales,
		Expenses:   state.Expenses,
		Totals: totalsJSON{
			Cylinders: t.Cylinders.String(),
			Income:    t.Income.Fixed(2),
			Expenses:  t.Expenses.Fixed(2),
			Balance:   t.Balance.Fixed(2),
		},
	}
}

func (s *Server) buildPage(state core.LedgerState) pageData {
	data := pageData{
		Title:      s.exporter.Title(),
		Currency:   s.currency.Grapheme(),
		ActiveDate: state.ActiveDate,
		Sales:      make([]saleRow, 0, len(state.Sales)),
		Expenses:   make([]expenseRow, 0, len(state.Expenses)),
		Totals:     newTotalsView(core.Summarize(state), s.currency),
		Strict:     s.strict,
	}

	saleEdit, editingSale := s.store.SaleEdit()
	if editingSale {
		data.SaleEdit = newSaleDraft(saleEdit)
	}
	for i, e := range state.Sales {
		data.Sales = append(data.Sales, saleRow{
			Index:     i,
			Date:      e.Date,
			Cylinders: e.Cylinders.String(),
			Price:     e.Price.String(),
			Note:      e.Note,
			Income:    s.currency.Format(e.Income()),
			Editing:   editingSale && saleEdit.Index == i,
		})
	}

	expenseEdit, editingExpense := s.store.ExpenseEdit()
	if editingExpense {
		data.ExpenseEdit = newExpenseDraft(expenseEdit)
	}
	for i, e := range state.Expenses {
		data.Expenses = append(data.Expenses, expenseRow{
			Index:   i,
			Date:    e.Date,
			Name:    e.Name,
			Amount:  e.Amount.String(),
			Editing: editingExpense && expenseEdit.Index == i,
		})
	}
	return data
}

func newSaleDraft(d ledger.Draft[core.SaleEntry]) *saleDraft {
	return &saleDraft{
		Index:     d.Index,
		Cylinders: d.Entry.Cylinders.String(),
		Price:     d.Entry.Price.String(),
		Note:      d.Entry.Note,
	}
}

func newExpenseDraft(d ledger.Draft[core.ExpenseEntry]) *expenseDraft {
	return &expenseDraft{
		Index:  d.Index,
		Name:   d.Entry.Name,
		Amount: d.Entry.Amount.String(),
	}
}
