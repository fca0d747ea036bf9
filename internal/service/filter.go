package service

import (
	"time"

	"github.com/bikeshare/dashboard/internal/domain"
)

// FilterByDate returns the rows whose date lies in [start, end], both ends inclusive.
// An inverted range matches nothing; it is not an error.
func FilterByDate(table *domain.RentalTable, start, end time.Time) *domain.RentalTable {
	window := domain.DateRange{Start: start, End: end}

	var kept []domain.RentalRecord
	table.Each(func(r domain.RentalRecord) {
		if window.Contains(r.Date) {
			kept = append(kept, r)
		}
	})

	source := ""
	if table != nil {
		source = table.Source
	}
	return domain.NewRentalTable(source, kept)
}
