// Package sheets defines the ledger the worker mirrors expenses and month
// closes into.
package sheets

import (
	"context"

	"presupuesto/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerWriter appends rows to the household ledger and returns a
	// reference to where they landed.
	LedgerWriter interface {
		AppendExpense(ctx context.Context, e core.Expense, categoryName string) (ref string, err error)
		AppendMonthSummary(ctx context.Context, s core.MonthSummary) (ref string, err error)
	}
)
