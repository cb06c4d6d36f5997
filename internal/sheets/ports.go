// Package sheets declares the outbound port used to mirror the ledger into a
// spreadsheet. Adapters live in the google and memory subpackages.
package sheets

import (
	"context"

	"gasledger/internal/core"
)

// LedgerPublisher replaces the mirrored Sales and Expenses tables with the
// contents of state.
type LedgerPublisher interface {
	PublishLedger(ctx context.Context, state core.LedgerState) error
}
