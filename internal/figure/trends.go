package figure

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/bikeshare/dashboard/internal/domain"
	"github.com/bikeshare/dashboard/pkg/utils"
)

const (
	totalsTitle = "Total Bike Rentals per Year"
	barHalf     = 0.35
)

// Trends renders the monthly line chart next to the yearly bar chart
func Trends(pivot *domain.MonthlyPivot, labels []string, totals []domain.YearlyTotal) ([]byte, error) {
	cellW, cellH := TrendsWidth/2, TrendsHeight

	left, err := monthlyPanel(pivot, labels, cellW, cellH)
	if err != nil {
		return nil, err
	}
	right, err := yearlyPanel(totals, cellW, cellH)
	if err != nil {
		return nil, err
	}

	return compose(2, cellW, cellH, left, right)
}

// MonthlyTitle names the line chart after the compared years
func MonthlyTitle(years []int) string {
	if len(years) == 0 {
		return "Monthly Bike Rentals"
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return "Monthly Bike Rentals: " + strings.Join(parts, " vs ")
}

// monthlyPanel draws one marker line per year. Absent (month, year) cells are
// skipped, so a gap shows as a missing marker rather than a drop to zero.
func monthlyPanel(pivot *domain.MonthlyPivot, labels []string, width, height int) (panel, error) {
	years := pivot.Years()
	title := MonthlyTitle(years)
	if pivot.Empty() {
		return placeholder(title, width, height)
	}

	months := pivot.Months()
	xr := &chart.ContinuousRange{Min: float64(months[0]) - 0.5, Max: float64(months[len(months)-1]) + 0.5}
	ticks := make([]chart.Tick, len(months))
	for i, m := range months {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		ticks[i] = chart.Tick{Value: float64(m), Label: label}
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	series := make([]chart.Series, 0, len(years))
	for i, y := range years {
		var xs, ys []float64
		for _, m := range months {
			v, ok := pivot.Value(m, y)
			if !ok {
				continue
			}
			xs = append(xs, float64(m))
			ys = append(ys, float64(v))
			minY = math.Min(minY, float64(v))
			maxY = math.Max(maxY, float64(v))
		}
		col := seriesColor(i)
		series = append(series, chart.ContinuousSeries{
			Name:    strconv.Itoa(y),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    4,
			},
		})
	}

	lo, hi := utils.PaddedRange(minY, maxY, 0.08)
	c := &chart.Chart{
		Title:      title,
		TitleStyle: titleStyle(),
		Width:      width,
		Height:     height,
		Background: background(),
		XAxis: chart.XAxis{
			Name:           "Month",
			Range:          xr,
			Ticks:          framedTicks(xr, ticks),
			GridMajorStyle: gridStyle(),
		},
		YAxis: chart.YAxis{
			Name:           "Total Rentals",
			Range:          &chart.ContinuousRange{Min: math.Max(0, lo), Max: hi},
			ValueFormatter: thousandsFormatter,
			GridMajorStyle: gridStyle(),
		},
		Series: series,
	}
	c.Elements = []chart.Renderable{chart.Legend(c)}

	return renderChart(c)
}

// yearlyPanel draws one bar per year annotated with its exact total
func yearlyPanel(totals []domain.YearlyTotal, width, height int) (panel, error) {
	if len(totals) == 0 {
		return placeholder(totalsTitle, width, height)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("figure: failed to load font: %w", err)
	}

	maxTotal := 0
	ticks := make([]chart.Tick, len(totals))
	series := make([]chart.Series, 0, len(totals))
	for i, t := range totals {
		x := float64(i)
		ticks[i] = chart.Tick{Value: x, Label: strconv.Itoa(t.Year)}
		if t.Total > maxTotal {
			maxTotal = t.Total
		}

		v := float64(t.Total)
		col := seriesColor(i)
		series = append(series, chart.ContinuousSeries{
			Name:    strconv.Itoa(t.Year),
			XValues: []float64{x - barHalf, x - barHalf, x + barHalf, x + barHalf},
			YValues: []float64{0, v, v, 0},
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 1,
				FillColor:   col,
			},
		})
	}

	xr := &chart.ContinuousRange{Min: -0.6, Max: float64(len(totals)) - 0.4}
	yr := &chart.ContinuousRange{Min: 0, Max: math.Max(1, float64(maxTotal)*1.12)}
	c := &chart.Chart{
		Title:      totalsTitle,
		TitleStyle: titleStyle(),
		Width:      width,
		Height:     height,
		Background: background(),
		XAxis: chart.XAxis{
			Name:  "Year",
			Range: xr,
			Ticks: framedTicks(xr, ticks),
		},
		YAxis: chart.YAxis{
			Name:           "Total Rentals",
			Range:          yr,
			ValueFormatter: thousandsFormatter,
			GridMajorStyle: gridStyle(),
		},
		Series:   series,
		Elements: []chart.Renderable{barLabels(totals, font, xr.Min, xr.Max, yr.Min, yr.Max)},
	}

	return renderChart(c)
}

// barLabels draws each total centred above its bar. framedTicks pins the axis
// ranges, so data coordinates map linearly onto the canvas box.
func barLabels(totals []domain.YearlyTotal, font *truetype.Font, xMin, xMax, yMin, yMax float64) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, _ chart.Style) {
		r.SetFont(font)
		r.SetFontSize(11)
		r.SetFontColor(textColor)

		for i, t := range totals {
			fx := (float64(i) - xMin) / (xMax - xMin)
			fy := (float64(t.Total) - yMin) / (yMax - yMin)
			px := box.Left + int(fx*float64(box.Width()))
			py := box.Bottom - int(fy*float64(box.Height()))

			label := utils.FormatThousands(t.Total)
			tb := r.MeasureText(label)
			r.Text(label, px-tb.Width()/2, py-6)
		}
	}
}
