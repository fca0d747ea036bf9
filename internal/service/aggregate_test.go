package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyTrends_Scenario(t *testing.T) {
	src := table(rec(t, "2011-01-05", 100), rec(t, "2011-01-20", 50))

	pivot, labels := MonthlyTrends(src, []int{2011})

	v, ok := pivot.Value(1, 2011)
	require.True(t, ok)
	assert.Equal(t, 150, v)
	assert.Equal(t, []int{1}, pivot.Months())
	assert.Equal(t, []string{"Jan"}, labels)

	totals := YearlyTotals(src)
	require.Len(t, totals, 1)
	assert.Equal(t, 2011, totals[0].Year)
	assert.Equal(t, 150, totals[0].Total)
}

func TestMonthlyTrends_AbsentCells(t *testing.T) {
	pivot, labels := MonthlyTrends(mixedTable(t), nil)

	assert.Equal(t, []int{1, 2, 3, 12}, pivot.Months())
	assert.Equal(t, []string{"Jan", "Feb", "Mar", "Dec"}, labels)
	assert.Equal(t, []int{2011, 2012}, pivot.Years())

	_, ok := pivot.Value(2, 2012)
	assert.False(t, ok, "February 2012 has no rows and must be absent, not zero")
	_, ok = pivot.Value(3, 2011)
	assert.False(t, ok)

	v, ok := pivot.Value(3, 2012)
	require.True(t, ok)
	assert.Equal(t, 8100, v)
}

func TestMonthlyTrends_YearsOutsideRequestedSet(t *testing.T) {
	src := table(rec(t, "2013-05-01", 10), rec(t, "2014-06-01", 20))

	pivot, labels := MonthlyTrends(src, []int{2011, 2012})

	assert.True(t, pivot.Empty())
	assert.Empty(t, pivot.Months())
	assert.Empty(t, labels)
}

func TestMonthlyTrends_EmptyTable(t *testing.T) {
	pivot, labels := MonthlyTrends(table(), nil)
	assert.True(t, pivot.Empty())
	assert.Empty(t, labels)
	assert.Empty(t, YearlyTotals(table()))
}

func TestPivotSumsMatchYearlyTotals(t *testing.T) {
	src := mixedTable(t)

	pivot, _ := MonthlyTrends(src, []int{2011, 2012})
	totals := YearlyTotals(src)

	require.Len(t, totals, 2)
	for _, total := range totals {
		assert.Equal(t, total.Total, pivot.YearSum(total.Year), "year %d", total.Year)
	}
}

func TestYearlyTotals(t *testing.T) {
	src := table(
		rec(t, "2013-01-01", 5),
		rec(t, "2011-01-01", 1),
		rec(t, "2012-01-01", 2),
		rec(t, "2011-07-01", 3),
	)

	totals := YearlyTotals(src)

	require.Len(t, totals, 3, "one row per distinct year")
	assert.Equal(t, 2011, totals[0].Year)
	assert.Equal(t, 4, totals[0].Total)
	assert.Equal(t, 2012, totals[1].Year)
	assert.Equal(t, 2013, totals[2].Year)
	assert.Equal(t, 5, totals[2].Total)
}

func TestMonthAbbrev(t *testing.T) {
	assert.Equal(t, "Jan", MonthAbbrev(1))
	assert.Equal(t, "Sep", MonthAbbrev(9))
	assert.Equal(t, "Dec", MonthAbbrev(12))
}
