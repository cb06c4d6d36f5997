package core

import "slices"

type (
	// SaleEntry is one recorded cylinder sale. Field order is the column order
	// of the workbook export.
	SaleEntry struct {
		Cylinders Number `json:"cylinders"`
		Price     Number `json:"price"`
		Note      string `json:"note"`
		Date      string `json:"date"`
	}

	// ExpenseEntry is one recorded expense.
	ExpenseEntry struct {
		Name   string `json:"name"`
		Amount Number `json:"amount"`
		Date   string `json:"date"`
	}

	// SaleInput is what the sale form submits; the date comes from the ledger.
	SaleInput struct {
		Cylinders Number
		Price     Number
		Note      string
	}

	// ExpenseInput is what the expense form submits.
	ExpenseInput struct {
		Name   string
		Amount Number
	}

	// LedgerState is the whole ledger: both lists in insertion order and the
	// date stamped on entries created or edited while it is active.
	LedgerState struct {
		Sales      []SaleEntry
		Expenses   []ExpenseEntry
		ActiveDate string
	}
)

// Income is the entry's contribution to total income.
func (e SaleEntry) Income() Figure {
	return FigureOf(e.Cylinders).Mul(FigureOf(e.Price))
}

// Clone returns a copy that shares no backing arrays with s.
func (s LedgerState) Clone() LedgerState {
	out := LedgerState{
		Sales:      slices.Clone(s.Sales),
		Expenses:   slices.Clone(s.Expenses),
		ActiveDate: s.ActiveDate,
	}
	if out.Sales == nil {
		out.Sales = []SaleEntry{}
	}
	if out.Expenses == nil {
		out.Expenses = []ExpenseEntry{}
	}
	return out
}

// IsEmpty reports whether neither list has entries.
func (s LedgerState) IsEmpty() bool {
	return len(s.Sales) == 0 && len(s.Expenses) == 0
}
