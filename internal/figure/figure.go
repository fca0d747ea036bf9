// Package figure renders the dashboard charts as PNG images.
//
// go-chart draws one chart per canvas, so multi-panel figures are rendered
// panel by panel and composed into a single image.
package figure

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bikeshare/dashboard/pkg/utils"
)

// Figure and panel sizes in pixels
const (
	TrendsWidth   = 1600
	TrendsHeight  = 600
	WeatherWidth  = 1800
	WeatherHeight = 1200
)

// NoDataMessage is drawn on panels whose input is empty
const NoDataMessage = "No data for the selected range"

var palette = []drawing.Color{
	drawing.ColorFromHex("4c72b0"),
	drawing.ColorFromHex("dd8452"),
	drawing.ColorFromHex("55a868"),
	drawing.ColorFromHex("c44e52"),
	drawing.ColorFromHex("8172b3"),
	drawing.ColorFromHex("937860"),
}

var (
	gridColor  = drawing.ColorFromHex("dddddd")
	textColor  = drawing.ColorFromHex("333333")
	mutedColor = drawing.ColorFromHex("888888")
)

func seriesColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

// panel is one rendered cell of a figure
type panel = image.Image

func background() chart.Style {
	return chart.Style{
		Padding: chart.Box{Top: 56, Left: 24, Right: 28, Bottom: 16},
	}
}

func titleStyle() chart.Style {
	return chart.Style{FontSize: 14, FontColor: textColor}
}

func gridStyle() chart.Style {
	return chart.Style{StrokeColor: gridColor, StrokeWidth: 1}
}

// thousandsFormatter labels y ticks in plain notation with separators
func thousandsFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return utils.FormatThousandsFloat(f)
	}
	return ""
}

func decimalFormatter(places int) chart.ValueFormatter {
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return strconv.FormatFloat(utils.RoundTo(f, places), 'f', places, 64)
		}
		return ""
	}
}

// framedTicks brackets ticks with unlabeled ticks at the range bounds. go-chart
// resets an axis range to the span of its custom ticks, so without them a single
// tick collapses the range and the padding around the outer ticks is lost.
// Grid lines are not drawn at the first and last tick.
func framedTicks(r *chart.ContinuousRange, ticks []chart.Tick) []chart.Tick {
	out := make([]chart.Tick, 0, len(ticks)+2)
	out = append(out, chart.Tick{Value: r.Min})
	out = append(out, ticks...)
	return append(out, chart.Tick{Value: r.Max})
}

func renderChart(c *chart.Chart) (panel, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("figure: failed to render %q: %w", c.Title, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("figure: failed to decode %q: %w", c.Title, err)
	}
	return img, nil
}

// canvas wraps a raw go-chart renderer for panels go-chart has no chart type for
type canvas struct {
	r      chart.Renderer
	width  int
	height int
}

func newCanvas(width, height int) (*canvas, error) {
	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, fmt.Errorf("figure: failed to create renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("figure: failed to load font: %w", err)
	}
	r.SetFont(font)

	c := &canvas{r: r, width: width, height: height}
	c.fillRect(0, 0, width, height, drawing.ColorWhite)
	return c, nil
}

func (c *canvas) fillRect(x0, y0, x1, y1 int, col drawing.Color) {
	c.r.SetFillColor(col)
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(1)
	c.r.MoveTo(x0, y0)
	c.r.LineTo(x1, y0)
	c.r.LineTo(x1, y1)
	c.r.LineTo(x0, y1)
	c.r.LineTo(x0, y0)
	c.r.Close()
	c.r.FillStroke()
}

// text draws body centred on (x, y)
func (c *canvas) text(body string, x, y int, size float64, col drawing.Color) {
	c.r.SetFontSize(size)
	c.r.SetFontColor(col)
	box := c.r.MeasureText(body)
	c.r.Text(body, x-box.Width()/2, y+box.Height()/2)
}

// textRight draws body right-aligned to x and vertically centred on y
func (c *canvas) textRight(body string, x, y int, size float64, col drawing.Color) {
	c.r.SetFontSize(size)
	c.r.SetFontColor(col)
	box := c.r.MeasureText(body)
	c.r.Text(body, x-box.Width(), y+box.Height()/2)
}

func (c *canvas) image() (panel, error) {
	var buf bytes.Buffer
	if err := c.r.Save(&buf); err != nil {
		return nil, fmt.Errorf("figure: failed to save panel: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("figure: failed to decode panel: %w", err)
	}
	return img, nil
}

// placeholder renders a titled panel carrying NoDataMessage
func placeholder(title string, width, height int) (panel, error) {
	c, err := newCanvas(width, height)
	if err != nil {
		return nil, err
	}
	c.text(title, width/2, 28, 14, textColor)
	c.text(NoDataMessage, width/2, height/2, 12, mutedColor)
	return c.image()
}

// compose lays panels out left to right, top to bottom, cols per row
func compose(cols, cellW, cellH int, panels ...panel) ([]byte, error) {
	rows := (len(panels) + cols - 1) / cols
	out := image.NewRGBA(image.Rect(0, 0, cols*cellW, rows*cellH))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)

	for i, p := range panels {
		x := (i % cols) * cellW
		y := (i / cols) * cellH
		draw.Draw(out, image.Rect(x, y, x+cellW, y+cellH), p, p.Bounds().Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("figure: failed to encode figure: %w", err)
	}
	return buf.Bytes(), nil
}
