package export

import (
	"fmt"

	"gasledger/internal/core"
)

// Table is a rendered table: a header row and text cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Document is the content of the PDF report, top to bottom.
type Document struct {
	Title    string
	DateLine string
	Sales    Table
	Expenses Table
	Summary  []string
}

// BuildDocument lays out the daily report for state. Amounts are printed
// with currency c.
func BuildDocument(title string, state core.LedgerState, c core.Currency) Document {
	totals := core.Summarize(state)

	doc := Document{
		Title:    title,
		DateLine: "Date: " + state.ActiveDate,
		Sales: Table{
			Headers: []string{"Date", "Cylinders", "Price", "Note"},
			Rows:    make([][]string, 0, len(state.Sales)),
		},
		Expenses: Table{
			Headers: []string{"Date", "Expense Name", "Amount"},
			Rows:    make([][]string, 0, len(state.Expenses)),
		},
		Summary: []string{
			fmt.Sprintf("Total Cylinders: %s", totals.Cylinders),
			fmt.Sprintf("Total Income: %s", c.Format(totals.Income)),
			fmt.Sprintf("Total Expenses: %s", c.Format(totals.Expenses)),
			fmt.Sprintf("Final Balance: %s", c.Format(totals.Balance)),
		},
	}
	for _, e := range state.Sales {
		doc.Sales.Rows = append(doc.Sales.Rows, []string{e.Date, e.Cylinders.String(), e.Price.String(), e.Note})
	}
	for _, e := range state.Expenses {
		doc.Expenses.Rows = append(doc.Expenses.Rows, []string{e.Date, e.Name, e.Amount.String()})
	}
	return doc
}
