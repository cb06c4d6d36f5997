package export

import (
	"context"
	"io"

	"gasledger/internal/core"
	"gasledger/internal/log"
)

// Exporter writes both reports with a fixed title and currency.
type Exporter struct {
	title    string
	currency core.Currency
	pdf      PDFWriter
	logger   *log.Logger
}

// NewExporter builds an exporter for "<businessName> Daily Report".
// fontPath may be empty.
func NewExporter(businessName string, currency core.Currency, fontPath string, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Exporter{
		title:    businessName + " Daily Report",
		currency: currency,
		pdf:      PDFWriter{FontPath: fontPath},
		logger:   logger.WithComponent(log.ComponentExport),
	}
}

// Title is the heading printed on the PDF report.
func (e *Exporter) Title() string { return e.title }

// Document returns the PDF content model for state.
func (e *Exporter) Document(state core.LedgerState) Document {
	return BuildDocument(e.title, state, e.currency)
}

func (e *Exporter) WriteWorkbook(ctx context.Context, w io.Writer, state core.LedgerState) error {
	e.logExport(ctx, "xlsx", state)
	return WriteWorkbook(w, state)
}

func (e *Exporter) WritePDF(ctx context.Context, w io.Writer, state core.LedgerState) error {
	e.logExport(ctx, "pdf", state)
	return e.pdf.Write(w, e.Document(state))
}

func (e *Exporter) logExport(ctx context.Context, format string, state core.LedgerState) {
	fields := log.NewFields().
		WithOperation(log.OpExport).
		WithLedger(state.ActiveDate, len(state.Sales), len(state.Expenses)).
		ToSlice()
	e.logger.InfoContext(ctx, "Exporting ledger", append(fields, log.FieldFormat, format)...)

	if t := core.Summarize(state); !t.Balance.IsValid() || !t.Cylinders.IsValid() {
		e.logger.DebugContext(ctx, "Exported totals contain NaN", log.FieldFormat, format)
	}
}
