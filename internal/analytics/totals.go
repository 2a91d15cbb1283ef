package analytics

import "presupuesto/internal/core"

// Totals are the month-level headline figures.
type Totals struct {
	Budget      core.Pesos `json:"budget"`
	Spent       core.Pesos `json:"spent"`
	PercentUsed float64    `json:"percentUsed"`
	Available   core.Pesos `json:"available"`
}

// TotalBudget sums every category budget.
func TotalBudget(categories []core.Category) core.Pesos {
	var total core.Pesos
	for _, c := range categories {
		total += c.Budget
	}
	return total
}

// TotalSpent sums the given expenses, including those whose category no
// longer exists.
func TotalSpent(monthExpenses []core.Expense) core.Pesos {
	var total core.Pesos
	for _, e := range monthExpenses {
		total += e.Amount
	}
	return total
}

// PercentUsed returns spent as a percentage of budget, or 0 when there is
// no budget.
func PercentUsed(spent, budget core.Pesos) float64 {
	if budget <= 0 {
		return 0
	}
	return float64(spent) / float64(budget) * 100
}

// Available is the remaining budget, floored at zero.
func Available(budget, spent core.Pesos) core.Pesos {
	return max(0, budget-spent)
}

// ComputeTotals bundles the headline figures for the month expenses.
func ComputeTotals(categories []core.Category, monthExpenses []core.Expense) Totals {
	budget := TotalBudget(categories)
	spent := TotalSpent(monthExpenses)
	return Totals{
		Budget:      budget,
		Spent:       spent,
		PercentUsed: PercentUsed(spent, budget),
		Available:   Available(budget, spent),
	}
}
