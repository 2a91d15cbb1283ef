package analytics

import "presupuesto/internal/core"

// CategoryRef is the result of resolving an expense's category. Known is
// false when the category was deleted; Name and Color then carry the
// neutral placeholder.
type CategoryRef struct {
	Known bool   `json:"known"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// HistoryRow is an expense joined with its category.
type HistoryRow struct {
	Expense  core.Expense `json:"expense"`
	Category CategoryRef  `json:"category"`
}

// LookupCategory resolves id against categories.
func LookupCategory(categories []core.Category, id string) CategoryRef {
	for _, c := range categories {
		if c.ID == id {
			return CategoryRef{Known: true, ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}
		}
	}
	return CategoryRef{
		ID:    id,
		Name:  core.UnknownCategoryName,
		Color: core.UnknownCategoryColor,
		Icon:  core.DefaultIcon,
	}
}

// History joins expenses with their categories, keeping input order.
func History(categories []core.Category, expenses []core.Expense) []HistoryRow {
	rows := make([]HistoryRow, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, HistoryRow{Expense: e, Category: LookupCategory(categories, e.CategoryID)})
	}
	return rows
}
