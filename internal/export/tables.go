// Package export projects a ledger snapshot into the two downloadable
// reports: a workbook with Sales and Expenses sheets and a PDF daily report.
package export

import (
	"gasledger/internal/core"
)

// Report filenames offered to the browser.
const (
	WorkbookFilename = "GasAgency_Report.xlsx"
	DocumentFilename = "GasAgency_Report.pdf"

	WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	DocumentContentType = "application/pdf"
)

// Workbook columns follow the entry field order.
var (
	SaleColumns    = []string{"cylinders", "price", "note", "date"}
	ExpenseColumns = []string{"name", "amount", "date"}
)

// SaleRows returns one workbook row per sale. Valid numbers stay numeric;
// NaN is written as the text "NaN".
func SaleRows(sales []core.SaleEntry) [][]any {
	rows := make([][]any, 0, len(sales))
	for _, e := range sales {
		rows = append(rows, []any{cellValue(e.Cylinders), cellValue(e.Price), e.Note, e.Date})
	}
	return rows
}

// ExpenseRows returns one workbook row per expense.
func ExpenseRows(expenses []core.ExpenseEntry) [][]any {
	rows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []any{e.Name, cellValue(e.Amount), e.Date})
	}
	return rows
}

func cellValue(n core.Number) any {
	if !n.IsValid() {
		return n.String()
	}
	return float64(n)
}
