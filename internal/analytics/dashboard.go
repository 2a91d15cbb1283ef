package analytics

import (
	"time"

	"presupuesto/internal/core"
)

// Dashboard holds every value derived from one snapshot.
type Dashboard struct {
	Month         time.Time       `json:"month"`
	Totals        Totals          `json:"totals"`
	Categories    []CategorySpend `json:"categories"`
	Slices        []Slice         `json:"slices"`
	SlicesTotal   core.Pesos      `json:"slicesTotal"`
	Daily         []DailyPoint    `json:"daily"`
	MonthExpenses int             `json:"monthExpenses"`
}

// Compute recalculates the dashboard from scratch.
func Compute(categories []core.Category, expenses []core.Expense, now time.Time) Dashboard {
	month := FilterCurrentMonth(expenses, now)
	slices := NonZeroSlices(categories, month)
	return Dashboard{
		Month:         StartOfMonth(now),
		Totals:        ComputeTotals(categories, month),
		Categories:    CategoryBreakdown(categories, month),
		Slices:        slices,
		SlicesTotal:   SlicesTotal(slices),
		Daily:         DailySeries(expenses, categories, now),
		MonthExpenses: len(month),
	}
}

// Summarize closes the calendar month containing at. Unlike the live
// dashboard the month is bounded on both ends.
func Summarize(categories []core.Category, expenses []core.Expense, at time.Time) core.MonthSummary {
	start, end := StartOfMonth(at), StartOfNextMonth(at)
	var month []core.Expense
	for _, e := range expenses {
		if !e.Date.Before(start) && e.Date.Before(end) {
			month = append(month, e)
		}
	}

	spent := SpendByCategory(categories, month)
	byCat := make([]core.CategoryAmount, 0, len(categories))
	for _, c := range categories {
		byCat = append(byCat, core.CategoryAmount{
			CategoryID: c.ID,
			Name:       c.Name,
			Budget:     c.Budget,
			Spent:      spent[c.ID],
		})
	}
	return core.MonthSummary{
		Year:        start.Year(),
		Month:       int(start.Month()),
		TotalBudget: TotalBudget(categories),
		TotalSpent:  TotalSpent(month),
		Expenses:    len(month),
		ByCategory:  byCat,
	}
}
