package service

import (
	"sort"
	"time"

	"github.com/bikeshare/dashboard/internal/domain"
)

// MonthlyTrends sums ride counts per (month, year) for the requested years.
// A nil or empty years falls back to domain.DefaultTrendYears. Month labels are
// three-letter abbreviations aligned with pivot.Months().
func MonthlyTrends(table *domain.RentalTable, years []int) (*domain.MonthlyPivot, []string) {
	if len(years) == 0 {
		years = domain.DefaultTrendYears
	}
	wanted := make(map[int]bool, len(years))
	for _, y := range years {
		wanted[y] = true
	}

	pivot := domain.NewMonthlyPivot()
	table.Each(func(r domain.RentalRecord) {
		if wanted[r.Year] {
			pivot.Add(r.Month, r.Year, r.Count)
		}
	})

	months := pivot.Months()
	labels := make([]string, len(months))
	for i, m := range months {
		labels[i] = MonthAbbrev(m)
	}

	return pivot, labels
}

// YearlyTotals sums ride counts per year over every row, ascending by year
func YearlyTotals(table *domain.RentalTable) []domain.YearlyTotal {
	sums := make(map[int]int)
	table.Each(func(r domain.RentalRecord) {
		sums[r.Year] += r.Count
	})

	totals := make([]domain.YearlyTotal, 0, len(sums))
	for y, total := range sums {
		totals = append(totals, domain.YearlyTotal{Year: y, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Year < totals[j].Year })

	return totals
}

// MonthAbbrev returns the English three-letter abbreviation of month (1-12)
func MonthAbbrev(month int) string {
	return time.Month(month).String()[:3]
}
