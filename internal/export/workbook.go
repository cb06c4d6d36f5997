package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"gasledger/internal/core"
)

const (
	SalesSheet    = "Sales"
	ExpensesSheet = "Expenses"
)

// WriteWorkbook writes the Sales and Expenses sheets to w. An empty list
// still gets its header row.
func WriteWorkbook(w io.Writer, state core.LedgerState) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1"; rename it so Sales is the first sheet.
	if err := f.SetSheetName(f.GetSheetName(0), SalesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ExpensesSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", ExpensesSheet, err)
	}

	if err := writeSheet(f, SalesSheet, SaleColumns, SaleRows(state.Sales)); err != nil {
		return err
	}
	if err := writeSheet(f, ExpensesSheet, ExpenseColumns, ExpenseRows(state.Expenses)); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNo int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, rowNo, err)
	}
	return nil
}
