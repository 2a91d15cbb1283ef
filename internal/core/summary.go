package core

// CategoryAmount represents spend aggregated by category.
type CategoryAmount struct {
	CategoryID string
	Name       string
	Budget     Pesos
	Spent      Pesos
}

// MonthSummary is the closing record of a calendar month.
type MonthSummary struct {
	Year        int
	Month       int // 1-12
	TotalBudget Pesos
	TotalSpent  Pesos
	Expenses    int
	ByCategory  []CategoryAmount
}
