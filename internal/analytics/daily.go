package analytics

import (
	"math"
	"time"

	"presupuesto/internal/core"
)

// DailyPoint is one day of the cumulative spend chart.
type DailyPoint struct {
	Day     int         `json:"day"`
	Actual  *core.Pesos `json:"actual"` // nil for days after today
	Ideal   core.Pesos  `json:"ideal"`
	Ceiling core.Pesos  `json:"ceiling"`
}

// DailySeries builds one point per day of now's month.
//
// Actual is the running sum of expenses dated inside the month up to the end
// of that day and stays nil for days after now. Ideal spreads the total
// budget evenly: round(budget / days * day), computed per day so rounding
// errors never accumulate.
func DailySeries(expenses []core.Expense, categories []core.Category, now time.Time) []DailyPoint {
	days := DaysInMonth(now)
	start := StartOfMonth(now)
	end := StartOfNextMonth(now)
	budget := TotalBudget(categories)
	dailyIdeal := float64(budget) / float64(days)

	perDay := make([]core.Pesos, days+1)
	for _, e := range expenses {
		if e.Date.Before(start) || !e.Date.Before(end) {
			continue
		}
		d := e.Date.In(now.Location()).Day()
		perDay[d] += e.Amount
	}

	today := now.Day()
	points := make([]DailyPoint, 0, days)
	var cumulative core.Pesos
	for d := 1; d <= days; d++ {
		cumulative += perDay[d]
		p := DailyPoint{
			Day:     d,
			Ideal:   core.Pesos(math.Round(dailyIdeal * float64(d))),
			Ceiling: budget,
		}
		if d <= today {
			v := cumulative
			p.Actual = &v
		}
		points = append(points, p)
	}
	return points
}
