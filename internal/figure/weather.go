package figure

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bikeshare/dashboard/internal/domain"
	"github.com/bikeshare/dashboard/pkg/utils"
)

// HeatmapTitle is the title of the correlation panel
const HeatmapTitle = "Korelasi Cuaca vs Jumlah Sewa"

const bandSamples = 40

// Weather renders the correlation heatmap and the three regression scatters in a 2x2 grid
func Weather(panels domain.WeatherPanels) ([]byte, error) {
	cellW, cellH := WeatherWidth/2, WeatherHeight/2

	cells := make([]panel, 0, 4)
	heat, err := heatmapPanel(panels.Correlation, cellW, cellH)
	if err != nil {
		return nil, err
	}
	cells = append(cells, heat)

	for _, s := range panels.Scatters {
		p, err := scatterPanel(s, cellW, cellH)
		if err != nil {
			return nil, err
		}
		cells = append(cells, p)
	}

	return compose(2, cellW, cellH, cells...)
}

// scatterPanel draws count against one weather variable with the fitted line
// and its confidence band as dashed bounds
func scatterPanel(s domain.ScatterPanel, width, height int) (panel, error) {
	if len(s.X) == 0 || len(s.X) != len(s.Y) {
		return placeholder(s.Title, width, height)
	}

	minX, maxX := extent(s.X)
	minY, maxY := extent(s.Y)

	pointColor := seriesColor(0).WithAlpha(160)
	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "observed",
			XValues: s.X,
			YValues: s.Y,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotColor:    pointColor,
				DotWidth:    3,
			},
		},
	}

	if s.Fit != nil {
		xs := make([]float64, bandSamples)
		fitted := make([]float64, bandSamples)
		lower := make([]float64, bandSamples)
		upper := make([]float64, bandSamples)
		for i := range xs {
			x := utils.Lerp(minX, maxX, float64(i)/float64(bandSamples-1))
			xs[i] = x
			fitted[i] = s.Fit.Predict(x)
			lower[i], upper[i] = s.Fit.Band(x)
			minY = math.Min(minY, lower[i])
			maxY = math.Max(maxY, upper[i])
		}

		lineColor := seriesColor(0)
		series = append(series, chart.ContinuousSeries{
			Name:    "fit",
			XValues: xs,
			YValues: fitted,
			Style:   chart.Style{StrokeColor: lineColor, StrokeWidth: 2},
		})
		if s.Fit.HasBand {
			band := chart.Style{
				StrokeColor:     lineColor.WithAlpha(140),
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 4},
			}
			series = append(series,
				chart.ContinuousSeries{Name: "95% CI", XValues: xs, YValues: lower, Style: band},
				chart.ContinuousSeries{XValues: xs, YValues: upper, Style: band},
			)
		}
	}

	xLo, xHi := utils.PaddedRange(minX, maxX, 0.05)
	yLo, yHi := utils.PaddedRange(minY, maxY, 0.05)
	c := &chart.Chart{
		Title:      s.Title,
		TitleStyle: titleStyle(),
		Width:      width,
		Height:     height,
		Background: background(),
		XAxis: chart.XAxis{
			Name:           s.XLabel,
			Range:          &chart.ContinuousRange{Min: xLo, Max: xHi},
			ValueFormatter: decimalFormatter(2),
			GridMajorStyle: gridStyle(),
		},
		YAxis: chart.YAxis{
			Name:           domain.ColumnCount,
			Range:          &chart.ContinuousRange{Min: yLo, Max: yHi},
			ValueFormatter: thousandsFormatter,
			GridMajorStyle: gridStyle(),
		},
		Series: series,
	}

	return renderChart(c)
}

// heatmapPanel draws the annotated correlation matrix with a colour bar
func heatmapPanel(m domain.CorrelationMatrix, width, height int) (panel, error) {
	n := len(m.Columns)
	if n == 0 || !anyFinite(m) {
		return placeholder(HeatmapTitle, width, height)
	}

	c, err := newCanvas(width, height)
	if err != nil {
		return nil, err
	}
	c.text(HeatmapTitle, width/2, 28, 14, textColor)

	const (
		top      = 64
		left     = 130
		barWidth = 22
		barGap   = 36
	)
	size := int(math.Min(float64(height-top-70), float64(width-left-barGap-barWidth-90)))
	cell := size / n
	size = cell * n

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x0, y0 := left+j*cell, top+i*cell
			v := m.At(i, j)
			if math.IsNaN(v) {
				c.fillRect(x0, y0, x0+cell, y0+cell, drawing.ColorWhite)
				continue
			}
			c.fillRect(x0, y0, x0+cell, y0+cell, Coolwarm(v))
			c.text(formatCoefficient(v), x0+cell/2, y0+cell/2, 12, annotationColor(v))
		}
		c.textRight(m.Columns[i], left-10, top+i*cell+cell/2, 11, textColor)
		c.text(m.Columns[i], left+i*cell+cell/2, top+size+18, 11, textColor)
	}

	// Colour bar from +1 at the top to -1 at the bottom.
	bx := left + size + barGap
	for y := 0; y < size; y++ {
		v := 1 - 2*float64(y)/float64(size-1)
		c.fillRect(bx, top+y, bx+barWidth, top+y+1, Coolwarm(v))
	}
	for _, tick := range []float64{1, 0.5, 0, -0.5, -1} {
		y := top + int((1-tick)/2*float64(size-1))
		c.r.SetFontSize(10)
		c.r.SetFontColor(textColor)
		c.r.Text(formatCoefficient(tick), bx+barWidth+6, y+4)
	}

	return c.image()
}

var (
	coolwarmLow  = [3]float64{59, 76, 192}
	coolwarmMid  = [3]float64{221, 221, 221}
	coolwarmHigh = [3]float64{180, 4, 38}
)

// Coolwarm maps a coefficient in [-1, 1] onto a diverging blue-grey-red scale
func Coolwarm(v float64) drawing.Color {
	v = utils.Clamp(v, -1, 1)
	from, to, t := coolwarmMid, coolwarmHigh, v
	if v < 0 {
		from, to, t = coolwarmMid, coolwarmLow, -v
	}
	var rgb [3]uint8
	for k := range rgb {
		rgb[k] = uint8(math.Round(utils.Lerp(from[k], to[k], t)))
	}
	return drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}

func annotationColor(v float64) drawing.Color {
	if math.Abs(v) > 0.6 {
		return drawing.ColorWhite
	}
	return textColor
}

func formatCoefficient(v float64) string {
	return fmt.Sprintf("%.2f", utils.RoundTo(v, 2))
}

func anyFinite(m domain.CorrelationMatrix) bool {
	for _, row := range m.Values {
		for _, v := range row {
			if !math.IsNaN(v) {
				return true
			}
		}
	}
	return false
}

func extent(vs []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
