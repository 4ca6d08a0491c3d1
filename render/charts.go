// Package render draws the dashboard charts as PNG images.
package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"nypd-dashboard/models"
)

// ErrNoData is returned when a chart has nothing to plot.
var ErrNoData = errors.New("render: no data to plot")

const (
	defaultWidth  = 1024
	defaultHeight = 480
	maxLabelLen   = 18
)

var (
	barColor  = drawing.ColorFromHex("1f77b4")
	lineColor = drawing.ColorFromHex("d62728")
)

// BarSpec describes a categorical bar chart.
type BarSpec struct {
	Title  string
	Counts []models.CategoryCount
	Width  int
	Height int
}

// LineSpec describes the complaints-per-hour line chart.
type LineSpec struct {
	Title  string
	XName  string
	YName  string
	Hours  []models.HourCount
	Width  int
	Height int
}

// Bar renders spec as a PNG bar chart into w.
func Bar(w io.Writer, spec BarSpec) error {
	if len(spec.Counts) == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, 0, len(spec.Counts))
	peak := 0
	for _, c := range spec.Counts {
		bars = append(bars, chart.Value{
			Value: float64(c.Count),
			Label: truncate(c.Category, maxLabelLen),
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		})
		if c.Count > peak {
			peak = c.Count
		}
	}

	width, height := size(spec.Width, spec.Height)
	barWidth := (width - 120) / len(bars) * 2 / 3
	if barWidth > 80 {
		barWidth = 80
	}
	if barWidth < 8 {
		barWidth = 8
	}

	graph := chart.BarChart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: niceMax(peak)},
		},
		Bars: bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart %q: %w", spec.Title, err)
	}
	return nil
}

// Line renders the hourly series as a PNG line chart with a fixed 0–23 x axis.
func Line(w io.Writer, spec LineSpec) error {
	if len(spec.Hours) == 0 {
		return ErrNoData
	}

	xs := make([]float64, len(spec.Hours))
	ys := make([]float64, len(spec.Hours))
	peak := 0
	for i, h := range spec.Hours {
		xs[i] = float64(h.Hour)
		ys[i] = float64(h.Count)
		if h.Count > peak {
			peak = h.Count
		}
	}

	ticks := make([]chart.Tick, 0, 24)
	for h := 0; h < 24; h++ {
		ticks = append(ticks, chart.Tick{Value: float64(h), Label: strconv.Itoa(h)})
	}

	width, height := size(spec.Width, spec.Height)
	graph := chart.Chart{
		Title:      spec.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  spec.XName,
			Range: &chart.ContinuousRange{Min: 0, Max: 23},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  spec.YName,
			Range: &chart.ContinuousRange{Min: 0, Max: niceMax(peak)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    spec.YName,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
					DotColor:    lineColor,
					DotWidth:    3,
				},
			},
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render line chart %q: %w", spec.Title, err)
	}
	return nil
}

func size(w, h int) (int, int) {
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// niceMax pads the top of the y axis and never returns a zero-height range.
func niceMax(peak int) float64 {
	if peak <= 0 {
		return 1
	}
	return float64(peak + (peak+9)/10)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
