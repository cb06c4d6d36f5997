package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"gasledger/internal/export"
)

type exportCmd struct {
	format string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the daily report as a workbook or PDF" }
func (*exportCmd) Usage() string {
	return `gasledgerctl export [-format xlsx|pdf] [-o <file>]

  Writes GasAgency_Report.xlsx or GasAgency_Report.pdf into the current
  directory unless -o names another file. "-o -" writes to stdout.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "xlsx", "Report format: xlsx or pdf.")
	f.StringVar(&c.output, "o", "", "Output file. Defaults to the standard report file name.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var filename string
	switch c.format {
	case "xlsx":
		filename = export.WorkbookFilename
	case "pdf":
		filename = export.DocumentFilename
	default:
		return usageError(f, fmt.Sprintf("unknown format %q", c.format))
	}
	if c.output != "" {
		filename = c.output
	}

	return run(ctx, func(a *app) error {
		state := a.store.State()
		write := a.exporter.WriteWorkbook
		if c.format == "pdf" {
			write = a.exporter.WritePDF
		}

		if filename == "-" {
			return write(ctx, a.out, state)
		}
		if dir := filepath.Dir(filename); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		out, err := os.Create(filename)
		if err != nil {
			return err
		}
		if err := write(ctx, out, state); err != nil {
			out.Close()
			os.Remove(filename)
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", filename)
		return nil
	})
}
