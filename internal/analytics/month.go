// Package analytics derives the budget dashboard from a snapshot of
// categories and expenses.
//
// Every function here is pure: results depend only on the arguments, and the
// current instant is always passed in as now. Amounts are whole pesos.
package analytics

import (
	"time"

	"presupuesto/internal/core"
)

// StartOfMonth returns midnight of the first day of now's month in now's location.
func StartOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// StartOfNextMonth returns midnight of the first day of the following month.
func StartOfNextMonth(now time.Time) time.Time {
	return StartOfMonth(now).AddDate(0, 1, 0)
}

// DaysInMonth returns the number of days in now's month.
func DaysInMonth(now time.Time) int {
	return StartOfNextMonth(now).AddDate(0, 0, -1).Day()
}

// FilterCurrentMonth keeps expenses dated at or after the start of now's
// month, preserving input order. There is no upper bound: future-dated
// expenses are kept.
func FilterCurrentMonth(expenses []core.Expense, now time.Time) []core.Expense {
	start := StartOfMonth(now)
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if !e.Date.Before(start) {
			out = append(out, e)
		}
	}
	return out
}
