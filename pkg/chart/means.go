package chart

import (
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/anrid/tb-burden/pkg/stats"
)

// RenderMeans draws the mean estimate per country from a summary as a
// simple bar chart. It returns ErrNoData for an empty summary.
func RenderMeans(w io.Writer, rows []stats.SummaryRow, opts Options) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 1000
	}
	if height <= 0 {
		height = 400
	}

	top := 0.0
	bars := make([]chart.Value, 0, len(rows))
	for _, r := range rows {
		bars = append(bars, chart.Value{Label: r.Country, Value: r.Mean})
		top = math.Max(top, r.Mean)
	}
	if top <= 0 {
		top = 1
	}

	// Leave room for the y axis and split the rest evenly between bars.
	slot := (width - 120) / len(rows)
	if slot < 4 {
		slot = 4
	}
	barWidth := slot * 2 / 3
	spacing := slot - barWidth

	title := opts.Title
	if title == "" {
		title = "Mean Estimated Prevalence by Country"
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}
