// Package google mirrors the ledger into a Google Spreadsheet with one tab
// for sales and one for expenses.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gasledger/internal/core"
	"gasledger/internal/export"
	"gasledger/internal/log"
	ports "gasledger/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	salesTab      string
	expensesTab   string
	logger        *log.Logger
}

var _ ports.LedgerPublisher = (*Client)(nil)

// Options configures New. Empty tab names default to the workbook sheet names.
type Options struct {
	SpreadsheetID string
	SalesTab      string
	ExpensesTab   string
	Logger        *log.Logger
}

// NewFromEnv reads GOOGLE_SPREADSHEET_ID and the optional
// GOOGLE_SALES_SHEET_NAME and GOOGLE_EXPENSES_SHEET_NAME.
func NewFromEnv(ctx context.Context, logger *log.Logger) (*Client, error) {
	return New(ctx, Options{
		SpreadsheetID: strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		SalesTab:      strings.TrimSpace(os.Getenv("GOOGLE_SALES_SHEET_NAME")),
		ExpensesTab:   strings.TrimSpace(os.Getenv("GOOGLE_EXPENSES_SHEET_NAME")),
		Logger:        logger,
	})
}

func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if opts.SalesTab == "" {
		opts.SalesTab = export.SalesSheet
	}
	if opts.ExpensesTab == "" {
		opts.ExpensesTab = export.ExpensesSheet
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	logger := opts.Logger.WithComponent(log.ComponentSheets)

	creds, err := serviceAccountCredentials()
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		salesTab:      opts.SalesTab,
		expensesTab:   opts.ExpensesTab,
		logger:        logger,
	}, nil
}

// serviceAccountCredentials reads GOOGLE_SERVICE_ACCOUNT_JSON, then
// GOOGLE_SERVICE_ACCOUNT_FILE, then GOOGLE_APPLICATION_CREDENTIALS.
func serviceAccountCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// PublishLedger clears both tabs and rewrites them. The tabs are written
// concurrently; the first failure is returned.
func (c *Client) PublishLedger(ctx context.Context, state core.LedgerState) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.replaceTab(ctx, c.salesTab, tabValues(export.SaleColumns, export.SaleRows(state.Sales)))
	})
	g.Go(func() error {
		return c.replaceTab(ctx, c.expensesTab, tabValues(export.ExpenseColumns, export.ExpenseRows(state.Expenses)))
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Ledger mirrored to spreadsheet", log.NewFields().
		WithOperation(log.OpSync).
		WithLedger(state.ActiveDate, len(state.Sales), len(state.Expenses)).
		ToSlice()...)
	return nil
}

func (c *Client) replaceTab(ctx context.Context, tab string, values [][]interface{}) error {
	rng := fmt.Sprintf("%s!A:Z", tab)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", tab, err)
	}

	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1", tab), vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", tab, err)
	}
	return nil
}

// tabValues prepends the header row to rows.
func tabValues(headers []string, rows [][]any) [][]interface{} {
	out := make([][]interface{}, 0, len(rows)+1)
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	out = append(out, header)
	for _, r := range rows {
		out = append(out, r)
	}
	return out
}
