package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasledger/internal/core"
	"gasledger/internal/export"
	"gasledger/internal/ledger"
	"gasledger/internal/log"
)

func useMemoryApp(t *testing.T, strict bool) (*ledger.Store, *bytes.Buffer) {
	t.Helper()
	store := ledger.New(core.LedgerState{ActiveDate: "2024-01-01"}, nil, log.Discard())
	out := &bytes.Buffer{}
	inr := core.MustCurrency("INR")

	prev := openApp
	openApp = func(context.Context) (*app, error) {
		return &app{
			store:    store,
			exporter: export.NewExporter("Gas Agency", inr, "", log.Discard()),
			currency: inr,
			numbers:  numberReader(strict),
			out:      out,
			close:    func() error { return nil },
		}, nil
	}
	t.Cleanup(func() { openApp = prev })
	return store, out
}

func execute(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	require.NoError(t, f.Parse(args))
	return cmd.Execute(context.Background(), f)
}

func TestAddAndTotals(t *testing.T) {
	store, out := useMemoryApp(t, false)

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &addSaleCmd{}, "-cylinders", "5", "-price", "900", "-note", "cash"))
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &addExpenseCmd{}, "-name", "fuel", "-amount", "300"))
	out.Reset()
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &totalsCmd{}))

	assert.Equal(t, "Total Cylinders: 5\nTotal Income: ₹4500.00\nTotal Expenses: ₹300.00\nFinal Balance: ₹4200.00\n", out.String())
	assert.Equal(t, "2024-01-01", store.State().Sales[0].Date)
}

func TestStrictNumbersRejectInput(t *testing.T) {
	store, _ := useMemoryApp(t, true)

	assert.Equal(t, subcommands.ExitFailure, execute(t, &addSaleCmd{}, "-cylinders", "abc", "-price", "900"))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &addExpenseCmd{}, "-name", "fuel", "-amount", "-1"))
	assert.True(t, store.State().IsEmpty())
}

func TestLenientNumbersStoreNaN(t *testing.T) {
	store, _ := useMemoryApp(t, false)

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &addSaleCmd{}, "-cylinders", "abc", "-price", "900"))
	assert.False(t, store.State().Sales[0].Cylinders.IsValid())
}

func TestEditRestampsDate(t *testing.T) {
	store, _ := useMemoryApp(t, false)
	execute(t, &addExpenseCmd{}, "-name", "fuel", "-amount", "300")
	execute(t, &setDateCmd{}, "2024-01-02")

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &editExpenseCmd{}, "-name", "diesel", "-amount", "350", "0"))

	assert.Equal(t, []core.ExpenseEntry{{Name: "diesel", Amount: 350, Date: "2024-01-02"}}, store.State().Expenses)
	_, editing := store.ExpenseEdit()
	assert.False(t, editing)
}

func TestEditOutOfRangeFails(t *testing.T) {
	useMemoryApp(t, false)

	assert.Equal(t, subcommands.ExitFailure, execute(t, &editSaleCmd{}, "-cylinders", "1", "-price", "1", "3"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &editSaleCmd{}, "-cylinders", "1"))
}

func TestDelete(t *testing.T) {
	store, _ := useMemoryApp(t, false)
	execute(t, &addSaleCmd{}, "-cylinders", "1", "-price", "10")
	execute(t, &addSaleCmd{}, "-cylinders", "2", "-price", "10")

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &deleteCmd{kind: "sale"}, "0"))
	assert.Equal(t, subcommands.ExitFailure, execute(t, &deleteCmd{kind: "expense"}, "0"))
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &deleteCmd{kind: "sale"}, "x"))

	sales := store.State().Sales
	require.Len(t, sales, 1)
	assert.Equal(t, core.Number(2), sales[0].Cylinders)
}

func TestShow(t *testing.T) {
	_, out := useMemoryApp(t, false)
	execute(t, &addSaleCmd{}, "-cylinders", "5", "-price", "900", "-note", "cash")
	out.Reset()

	assert.Equal(t, subcommands.ExitSuccess, execute(t, &showCmd{}))
	assert.Contains(t, out.String(), "Date: 2024-01-01")
	assert.Contains(t, out.String(), "[0] 2024-01-01  5 cylinders × ₹900 = ₹4500.00 → cash")
}

func TestExportWritesFiles(t *testing.T) {
	useMemoryApp(t, false)
	execute(t, &addSaleCmd{}, "-cylinders", "5", "-price", "900")
	dir := t.TempDir()

	xlsx := filepath.Join(dir, "out", "report.xlsx")
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &exportCmd{}, "-o", xlsx))
	data, err := os.ReadFile(xlsx)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))

	pdf := filepath.Join(dir, "report.pdf")
	assert.Equal(t, subcommands.ExitSuccess, execute(t, &exportCmd{}, "-format", "pdf", "-o", pdf))
	data, err = os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	assert.Equal(t, subcommands.ExitUsageError, execute(t, &exportCmd{}, "-format", "csv"))
}
