package service

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bikeshare/dashboard/internal/domain"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func rec(t *testing.T, date string, count int) domain.RentalRecord {
	t.Helper()
	return domain.NewRentalRecord(day(t, date), count, 0.5, 0.5, 0.2)
}

func table(records ...domain.RentalRecord) *domain.RentalTable {
	return domain.NewRentalTable("test.csv", records)
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// mixedTable spans two years with an uneven number of rows per month
func mixedTable(t *testing.T) *domain.RentalTable {
	return table(
		rec(t, "2011-01-01", 985),
		rec(t, "2011-01-02", 801),
		rec(t, "2011-02-14", 1500),
		rec(t, "2011-12-31", 2000),
		rec(t, "2012-01-01", 2294),
		rec(t, "2012-03-15", 4000),
		rec(t, "2012-03-16", 4100),
		rec(t, "2012-12-31", 2729),
	)
}
