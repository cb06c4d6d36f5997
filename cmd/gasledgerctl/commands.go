package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"

	"gasledger/internal/core"
)

var commands = []subcommands.Command{
	&showCmd{},
	&totalsCmd{},
	&setDateCmd{},
	&addSaleCmd{},
	&addExpenseCmd{},
	&editSaleCmd{},
	&editExpenseCmd{},
	&deleteCmd{kind: "sale"},
	&deleteCmd{kind: "expense"},
	&exportCmd{},
}

// run opens the stored ledger, hands it to fn and closes it again.
func run(ctx context.Context, fn func(*app) error) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	err = fn(a)
	if cerr := a.close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func usageError(f *flag.FlagSet, msg string) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, msg)
	f.Usage()
	return subcommands.ExitUsageError
}

type showCmd struct{}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "list sale and expense entries with their indexes" }
func (*showCmd) Usage() string {
	return `gasledgerctl show

  Prints the active date, every sale and expense entry with the index the
  edit and delete commands expect, and the daily summary.
`
}
func (*showCmd) SetFlags(*flag.FlagSet) {}

func (*showCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		state := a.store.State()
		fmt.Fprintf(a.out, "Date: %s\n\nSales\n", state.ActiveDate)
		for i, e := range state.Sales {
			fmt.Fprintf(a.out, "  [%d] %s  %s cylinders × %s%s = %s → %s\n",
				i, e.Date, e.Cylinders, a.currency.Grapheme(), e.Price, a.currency.Format(e.Income()), e.Note)
		}
		fmt.Fprintln(a.out, "\nExpenses")
		for i, e := range state.Expenses {
			fmt.Fprintf(a.out, "  [%d] %s  %s: %s%s\n", i, e.Date, e.Name, a.currency.Grapheme(), e.Amount)
		}
		fmt.Fprintln(a.out)
		printTotals(a, a.store.Totals())
		return nil
	})
}

type totalsCmd struct{}

func (*totalsCmd) Name() string     { return "totals" }
func (*totalsCmd) Synopsis() string { return "print the daily summary" }
func (*totalsCmd) Usage() string {
	return `gasledgerctl totals
`
}
func (*totalsCmd) SetFlags(*flag.FlagSet) {}

func (*totalsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		printTotals(a, a.store.Totals())
		return nil
	})
}

func printTotals(a *app, t core.Totals) {
	fmt.Fprintf(a.out, "Total Cylinders: %s\n", t.Cylinders)
	fmt.Fprintf(a.out, "Total Income: %s\n", a.currency.Format(t.Income))
	fmt.Fprintf(a.out, "Total Expenses: %s\n", a.currency.Format(t.Expenses))
	fmt.Fprintf(a.out, "Final Balance: %s\n", a.currency.Format(t.Balance))
}

type setDateCmd struct{}

func (*setDateCmd) Name() string     { return "set-date" }
func (*setDateCmd) Synopsis() string { return "set the date stamped on new and edited entries" }
func (*setDateCmd) Usage() string {
	return `gasledgerctl set-date <date>

  The value is stored as given. Existing entries keep their dates.
`
}
func (*setDateCmd) SetFlags(*flag.FlagSet) {}

func (*setDateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usageError(f, "set-date takes exactly one date")
	}
	return run(ctx, func(a *app) error {
		state := a.store.SetActiveDate(ctx, f.Arg(0))
		fmt.Fprintf(a.out, "Date: %s\n", state.ActiveDate)
		return nil
	})
}

type saleFlags struct {
	cylinders string
	price     string
	note      string
}

func (s *saleFlags) register(f *flag.FlagSet) {
	f.StringVar(&s.cylinders, "cylinders", "", "Number of cylinders sold.")
	f.StringVar(&s.price, "price", "", "Price per cylinder.")
	f.StringVar(&s.note, "note", "", "Free-text note, e.g. the payment method.")
}

func (s *saleFlags) input(a *app) (core.SaleInput, error) {
	cylinders, err1 := a.numbers("cylinders", s.cylinders)
	price, err2 := a.numbers("price", s.price)
	if err := errors.Join(err1, err2); err != nil {
		return core.SaleInput{}, err
	}
	return core.SaleInput{Cylinders: cylinders, Price: price, Note: s.note}, nil
}

type expenseFlags struct {
	name   string
	amount string
}

func (e *expenseFlags) register(f *flag.FlagSet) {
	f.StringVar(&e.name, "name", "", "Expense name.")
	f.StringVar(&e.amount, "amount", "", "Expense amount.")
}

func (e *expenseFlags) input(a *app) (core.ExpenseInput, error) {
	amount, err := a.numbers("amount", e.amount)
	if err != nil {
		return core.ExpenseInput{}, err
	}
	return core.ExpenseInput{Name: e.name, Amount: amount}, nil
}

type addSaleCmd struct{ saleFlags }

func (*addSaleCmd) Name() string     { return "add-sale" }
func (*addSaleCmd) Synopsis() string { return "record a cylinder sale under the active date" }
func (*addSaleCmd) Usage() string {
	return `gasledgerctl add-sale -cylinders <n> -price <p> [-note <text>]
`
}
func (c *addSaleCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *addSaleCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		in, err := c.input(a)
		if err != nil {
			return err
		}
		state := a.store.AddSale(ctx, in)
		fmt.Fprintf(a.out, "Added sale [%d]\n", len(state.Sales)-1)
		return nil
	})
}

type addExpenseCmd struct{ expenseFlags }

func (*addExpenseCmd) Name() string     { return "add-expense" }
func (*addExpenseCmd) Synopsis() string { return "record an expense under the active date" }
func (*addExpenseCmd) Usage() string {
	return `gasledgerctl add-expense -name <text> -amount <a>
`
}
func (c *addExpenseCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *addExpenseCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(a *app) error {
		in, err := c.input(a)
		if err != nil {
			return err
		}
		state := a.store.AddExpense(ctx, in)
		fmt.Fprintf(a.out, "Added expense [%d]\n", len(state.Expenses)-1)
		return nil
	})
}

type editSaleCmd struct{ saleFlags }

func (*editSaleCmd) Name() string     { return "edit-sale" }
func (*editSaleCmd) Synopsis() string { return "replace a sale entry, re-stamping it with the active date" }
func (*editSaleCmd) Usage() string {
	return `gasledgerctl edit-sale -cylinders <n> -price <p> [-note <text>] <index>
`
}
func (c *editSaleCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *editSaleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	index, err := indexArg(f)
	if err != nil {
		return usageError(f, err.Error())
	}
	return run(ctx, func(a *app) error {
		in, err := c.input(a)
		if err != nil {
			return err
		}
		if _, err := a.store.BeginEditSale(ctx, index); err != nil {
			return err
		}
		_, err = a.store.CommitEditSale(ctx, core.SaleEntry{Cylinders: in.Cylinders, Price: in.Price, Note: in.Note})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated sale [%d]\n", index)
		return nil
	})
}

type editExpenseCmd struct{ expenseFlags }

func (*editExpenseCmd) Name() string { return "edit-expense" }
func (*editExpenseCmd) Synopsis() string {
	return "replace an expense entry, re-stamping it with the active date"
}
func (*editExpenseCmd) Usage() string {
	return `gasledgerctl edit-expense -name <text> -amount <a> <index>
`
}
func (c *editExpenseCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *editExpenseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	index, err := indexArg(f)
	if err != nil {
		return usageError(f, err.Error())
	}
	return run(ctx, func(a *app) error {
		in, err := c.input(a)
		if err != nil {
			return err
		}
		if _, err := a.store.BeginEditExpense(ctx, index); err != nil {
			return err
		}
		_, err = a.store.CommitEditExpense(ctx, core.ExpenseEntry{Name: in.Name, Amount: in.Amount})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated expense [%d]\n", index)
		return nil
	})
}

type deleteCmd struct {
	kind string
}

func (d *deleteCmd) Name() string     { return "delete-" + d.kind }
func (d *deleteCmd) Synopsis() string { return "remove the " + d.kind + " entry at an index" }
func (d *deleteCmd) Usage() string {
	return "gasledgerctl delete-" + d.kind + " <index>\n"
}
func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (d *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	index, err := indexArg(f)
	if err != nil {
		return usageError(f, err.Error())
	}
	return run(ctx, func(a *app) error {
		var err error
		if d.kind == "sale" {
			_, err = a.store.DeleteSaleAt(ctx, index)
		} else {
			_, err = a.store.DeleteExpenseAt(ctx, index)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Deleted %s [%d]\n", d.kind, index)
		return nil
	})
}

func indexArg(f *flag.FlagSet) (int, error) {
	if f.NArg() != 1 {
		return 0, errors.New("expected exactly one index")
	}
	i, err := strconv.Atoi(f.Arg(0))
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid index %q", f.Arg(0))
	}
	return i, nil
}
