package store

import (
	"context"
	"errors"

	"presupuesto/internal/core"
)

// ErrNotFound is returned when updating or deleting a missing record.
var ErrNotFound = errors.New("record not found")

// Ports for the record store backends.
type (
	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		// PutCategory creates or fully replaces the category with c.ID.
		PutCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, id string) error
	}

	ExpenseStore interface {
		// ListExpenses returns every expense, most recent first.
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		// CreateExpense stores e and returns it with the assigned ID.
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	Repository interface {
		CategoryStore
		ExpenseStore
	}

	// ArchiveWriter persists month closes. Saving the same month twice
	// replaces the earlier record.
	ArchiveWriter interface {
		SaveMonthSummary(ctx context.Context, s core.MonthSummary) error
	}

	// ChangeWatcher is implemented by backends that can observe writes made
	// by other processes.
	ChangeWatcher interface {
		// Watch calls onChange after every external change until ctx ends.
		Watch(ctx context.Context, onChange func()) error
	}
)
