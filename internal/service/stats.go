package service

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bikeshare/dashboard/internal/domain"
)

// confidenceLevel is the two-sided level of the regression band
const confidenceLevel = 0.95

// CorrelationColumns are the numeric columns compared on the heatmap, in display order
var CorrelationColumns = []string{
	domain.ColumnTemperature,
	domain.ColumnHumidity,
	domain.ColumnWindspeed,
	domain.ColumnCount,
}

// Column extracts a numeric column from the table in row order
func Column(table *domain.RentalTable, name string) []float64 {
	out := make([]float64, 0, table.Len())
	table.Each(func(r domain.RentalRecord) {
		switch name {
		case domain.ColumnTemperature:
			out = append(out, r.Temperature)
		case domain.ColumnHumidity:
			out = append(out, r.Humidity)
		case domain.ColumnWindspeed:
			out = append(out, r.Windspeed)
		case domain.ColumnCount:
			out = append(out, float64(r.Count))
		}
	})
	return out
}

// CorrelationMatrix computes pairwise Pearson coefficients over CorrelationColumns.
// Coefficients involving a constant column, or computed from fewer than two rows, are NaN.
func CorrelationMatrix(table *domain.RentalTable) domain.CorrelationMatrix {
	n := len(CorrelationColumns)
	cols := make([][]float64, n)
	varies := make([]bool, n)
	for i, name := range CorrelationColumns {
		cols[i] = Column(table, name)
		varies[i] = len(cols[i]) >= 2 && stat.Variance(cols[i], nil) > 0
	}

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		for j := range values[i] {
			switch {
			case !varies[i] || !varies[j]:
				values[i][j] = math.NaN()
			case i == j:
				values[i][j] = 1
			default:
				values[i][j] = stat.Correlation(cols[i], cols[j], nil)
			}
		}
	}

	columns := make([]string, n)
	copy(columns, CorrelationColumns)
	return domain.CorrelationMatrix{Columns: columns, Values: values}
}

// FitRegression fits y = a + b*x by least squares. It returns nil when fewer
// than two points are given or x is constant. The confidence band for the mean
// response needs at least three points.
func FitRegression(xs, ys []float64) *domain.Regression {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return nil
	}

	meanX := stat.Mean(xs, nil)
	var sxx float64
	for _, x := range xs {
		d := x - meanX
		sxx += d * d
	}
	if sxx == 0 {
		return nil
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	fit := &domain.Regression{
		Slope:     beta,
		Intercept: alpha,
		N:         n,
		MeanX:     meanX,
		Sxx:       sxx,
	}

	if n < 3 {
		return fit
	}

	var sse float64
	for i, x := range xs {
		r := ys[i] - fit.Predict(x)
		sse += r * r
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	fit.StdErr = math.Sqrt(sse / float64(n-2))
	fit.TCrit = t.Quantile(1 - (1-confidenceLevel)/2)
	fit.HasBand = true

	return fit
}

// scatterColumns lists the weather panels in grid order after the heatmap
var scatterColumns = []struct {
	column string
	title  string
	label  string
}{
	{domain.ColumnTemperature, "Temperature vs Rentals", "temp"},
	{domain.ColumnHumidity, "Humidity vs Rentals", "hum"},
	{domain.ColumnWindspeed, "Windspeed vs Rentals", "windspeed"},
}

// WeatherPanels gathers the heatmap and scatter inputs for the weather figure
func WeatherPanels(table *domain.RentalTable) domain.WeatherPanels {
	counts := Column(table, domain.ColumnCount)

	scatters := make([]domain.ScatterPanel, 0, len(scatterColumns))
	for _, p := range scatterColumns {
		xs := Column(table, p.column)
		scatters = append(scatters, domain.ScatterPanel{
			Title:  p.title,
			XLabel: p.label,
			X:      xs,
			Y:      counts,
			Fit:    FitRegression(xs, counts),
		})
	}

	return domain.WeatherPanels{
		Correlation: CorrelationMatrix(table),
		Scatters:    scatters,
	}
}
