package analytics

import "presupuesto/internal/core"

// CategorySpend is one row of the per-category budget table.
type CategorySpend struct {
	Category    core.Category `json:"category"`
	Spent       core.Pesos    `json:"spent"`
	PercentUsed float64       `json:"percentUsed"`
	BarPercent  float64       `json:"barPercent"`
	OverBudget  bool          `json:"overBudget"`
}

// Slice is one segment of the share-of-total chart.
type Slice struct {
	CategoryID string     `json:"categoryId"`
	Name       string     `json:"name"`
	Color      string     `json:"color"`
	Value      core.Pesos `json:"value"`
	Share      float64    `json:"share"` // percent of the shown total
}

// SpendByCategory sums month expenses per category. Every category gets a
// key, zero included; expenses pointing at unknown categories are dropped.
func SpendByCategory(categories []core.Category, monthExpenses []core.Expense) map[string]core.Pesos {
	spent := make(map[string]core.Pesos, len(categories))
	for _, c := range categories {
		spent[c.ID] = 0
	}
	for _, e := range monthExpenses {
		if _, ok := spent[e.CategoryID]; ok {
			spent[e.CategoryID] += e.Amount
		}
	}
	return spent
}

// CategoryBreakdown returns the budget table in category order.
func CategoryBreakdown(categories []core.Category, monthExpenses []core.Expense) []CategorySpend {
	spent := SpendByCategory(categories, monthExpenses)
	rows := make([]CategorySpend, 0, len(categories))
	for _, c := range categories {
		s := spent[c.ID]
		pct := PercentUsed(s, c.Budget)
		rows = append(rows, CategorySpend{
			Category:    c,
			Spent:       s,
			PercentUsed: pct,
			BarPercent:  min(100, pct),
			OverBudget:  pct > 100,
		})
	}
	return rows
}

// NonZeroSlices returns categories with spend above zero. Shares are
// relative to the sum of the shown values, so unknown-category spend is
// excluded from the denominator.
func NonZeroSlices(categories []core.Category, monthExpenses []core.Expense) []Slice {
	spent := SpendByCategory(categories, monthExpenses)
	var slices []Slice
	var total core.Pesos
	for _, c := range categories {
		v := spent[c.ID]
		if v <= 0 {
			continue
		}
		total += v
		slices = append(slices, Slice{CategoryID: c.ID, Name: c.Name, Color: c.Color, Value: v})
	}
	for i := range slices {
		slices[i].Share = float64(slices[i].Value) / float64(total) * 100
	}
	return slices
}

// SlicesTotal is the sum shown at the center of the share chart.
func SlicesTotal(slices []Slice) core.Pesos {
	var total core.Pesos
	for _, s := range slices {
		total += s.Value
	}
	return total
}
