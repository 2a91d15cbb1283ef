// Package worker mirrors expenses into the ledger and closes months on a
// schedule.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"presupuesto/internal/amqp"
	"presupuesto/internal/sheets"
)

// LedgerWorker appends every created expense to the ledger.
type LedgerWorker struct {
	ledger sheets.LedgerWriter
	logger *slog.Logger
}

func NewLedgerWorker(ledger sheets.LedgerWriter, logger *slog.Logger) *LedgerWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerWorker{ledger: ledger, logger: logger.With("component", "worker")}
}

// HandleExpenseCreated processes a single expense created message from AMQP.
// A returned error makes the consumer requeue the message.
func (w *LedgerWorker) HandleExpenseCreated(ctx context.Context, msg *amqp.ExpenseCreatedMessage) error {
	w.logger.InfoContext(ctx, "Processing expense created message",
		"expense_id", msg.Expense.ID,
		"published_at", msg.Timestamp)

	ref, err := w.ledger.AppendExpense(ctx, msg.Expense, msg.CategoryName)
	if err != nil {
		return fmt.Errorf("append expense %s to ledger: %w", msg.Expense.ID, err)
	}

	w.logger.InfoContext(ctx, "Expense mirrored to ledger",
		"expense_id", msg.Expense.ID,
		"ledger_ref", ref)
	return nil
}
