package domain

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// DefaultTrendYears is the year set compared on the monthly trend chart
var DefaultTrendYears = []int{2011, 2012}

// MonthlyPivot maps month (1-12) to year to summed ride count.
// A (month, year) pair with no rows is absent, never zero.
type MonthlyPivot struct {
	cells map[int]map[int]int
}

// NewMonthlyPivot returns an empty pivot
func NewMonthlyPivot() *MonthlyPivot {
	return &MonthlyPivot{cells: make(map[int]map[int]int)}
}

// Add accumulates count into the (month, year) cell, creating it if needed
func (p *MonthlyPivot) Add(month, year, count int) {
	row, ok := p.cells[month]
	if !ok {
		row = make(map[int]int)
		p.cells[month] = row
	}
	row[year] += count
}

// Value returns the cell for (month, year); ok is false when the cell is absent
func (p *MonthlyPivot) Value(month, year int) (int, bool) {
	if p == nil {
		return 0, false
	}
	v, ok := p.cells[month][year]
	return v, ok
}

// Months returns the pivot's month index in calendar order
func (p *MonthlyPivot) Months() []int {
	if p == nil {
		return nil
	}
	months := make([]int, 0, len(p.cells))
	for m := range p.cells {
		months = append(months, m)
	}
	sort.Ints(months)
	return months
}

// Years returns the pivot's year columns in ascending order
func (p *MonthlyPivot) Years() []int {
	if p == nil {
		return nil
	}
	seen := make(map[int]struct{})
	for _, row := range p.cells {
		for y := range row {
			seen[y] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Empty reports whether the pivot has no cells
func (p *MonthlyPivot) Empty() bool {
	return p == nil || len(p.cells) == 0
}

// YearSum sums every present cell of one year column
func (p *MonthlyPivot) YearSum(year int) int {
	total := 0
	for _, m := range p.Months() {
		if v, ok := p.Value(m, year); ok {
			total += v
		}
	}
	return total
}

// MarshalJSON encodes the pivot as rows keyed by month with null for absent cells
func (p *MonthlyPivot) MarshalJSON() ([]byte, error) {
	type row struct {
		Month  int             `json:"month"`
		Values map[string]*int `json:"values"`
	}
	years := p.Years()
	rows := make([]row, 0)
	for _, m := range p.Months() {
		r := row{Month: m, Values: make(map[string]*int, len(years))}
		for _, y := range years {
			key := strconv.Itoa(y)
			if v, ok := p.Value(m, y); ok {
				v := v
				r.Values[key] = &v
			} else {
				r.Values[key] = nil
			}
		}
		rows = append(rows, r)
	}
	return json.Marshal(struct {
		Years []int `json:"years"`
		Rows  []row `json:"rows"`
	}{Years: nonNil(years), Rows: rows})
}

// YearlyTotal is the summed ride count of one year
type YearlyTotal struct {
	Year  int `json:"year"`
	Total int `json:"total"`
}

// CorrelationMatrix holds Pearson coefficients between numeric columns.
// Values is row-major; NaN marks an undefined coefficient.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"-"`
}

// At returns the coefficient between columns i and j
func (m CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// MarshalJSON encodes NaN coefficients as null
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			v := v
			values[i][j] = &v
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{Columns: nonNilStrings(m.Columns), Values: values})
}

// Regression is an ordinary least squares fit y = Intercept + Slope*x
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	N         int     `json:"n"`

	// HasBand is false when there are too few points for a confidence band
	HasBand bool    `json:"has_band"`
	MeanX   float64 `json:"-"`
	Sxx     float64 `json:"-"`
	StdErr  float64 `json:"-"`
	TCrit   float64 `json:"-"`
}

// Predict returns the fitted value at x
func (r Regression) Predict(x float64) float64 {
	return r.Intercept + r.Slope*x
}

// Band returns the lower and upper confidence bounds of the mean response at x
func (r Regression) Band(x float64) (lo, hi float64) {
	y := r.Predict(x)
	if !r.HasBand {
		return y, y
	}
	d := x - r.MeanX
	half := r.TCrit * r.StdErr * math.Sqrt(1/float64(r.N)+d*d/r.Sxx)
	return y - half, y + half
}

// ScatterPanel is one weather variable plotted against ride count
type ScatterPanel struct {
	Title  string      `json:"title"`
	XLabel string      `json:"x_label"`
	X      []float64   `json:"-"`
	Y      []float64   `json:"-"`
	Fit    *Regression `json:"fit"`
}

// WeatherPanels is the input of the weather correlation figure
type WeatherPanels struct {
	Correlation CorrelationMatrix `json:"correlation"`
	Scatters    []ScatterPanel    `json:"scatters"`
}

// Figures is the output of one pipeline run
type Figures struct {
	Range       DateRange     `json:"range"`
	Rows        int           `json:"rows"`
	Empty       bool          `json:"empty"`
	Pivot       *MonthlyPivot `json:"pivot"`
	MonthLabels []string      `json:"month_labels"`
	Totals      []YearlyTotal `json:"totals"`
	Weather     WeatherPanels `json:"weather"`
	TrendsPNG   []byte        `json:"-"`
	WeatherPNG  []byte        `json:"-"`
}

func nonNil(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
