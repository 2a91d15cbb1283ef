// Package memory is an in-process ledger used when no spreadsheet is
// configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"presupuesto/internal/core"
	ports "presupuesto/internal/sheets"
)

// Row is a ledger line for one expense.
type Row struct {
	Expense      core.Expense
	CategoryName string
}

type Ledger struct {
	mu        sync.Mutex
	rows      []Row
	summaries []core.MonthSummary
}

var _ ports.LedgerWriter = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{}
}

// AppendExpense stores the expense and returns a synthetic row reference.
func (l *Ledger) AppendExpense(_ context.Context, e core.Expense, categoryName string) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, Row{Expense: e, CategoryName: categoryName})
	return fmt.Sprintf("mem:%d", len(l.rows)), nil
}

func (l *Ledger) AppendMonthSummary(_ context.Context, s core.MonthSummary) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.summaries = append(l.summaries, s)
	return fmt.Sprintf("mem:summary:%04d-%02d", s.Year, s.Month), nil
}

// Rows returns a copy of the expense lines.
func (l *Ledger) Rows() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Row(nil), l.rows...)
}

// Summaries returns a copy of the appended month closes.
func (l *Ledger) Summaries() []core.MonthSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.MonthSummary(nil), l.summaries...)
}
