package chart

import (
	"fmt"
	"image/color"
	"io"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/anrid/tb-burden/pkg/stats"
)

// Point is one year of a country's series.
type Point struct {
	Year     int
	Estimate float64
	Low      float64
	High     float64
}

// Series is the prevalence of one country over time.
type Series struct {
	Country string
	Points  []Point
}

// BuildTimeSeries groups view into one series per country, sorted by country
// name, with points in year order. Rows without an estimate are left out.
func BuildTimeSeries(view []stats.Record) []Series {
	_, groups := stats.ByCountry(view)

	names := make([]string, 0, len(groups))
	for c := range groups {
		names = append(names, c)
	}
	sort.Strings(names)

	var series []Series
	for _, c := range names {
		s := Series{Country: c}
		for _, r := range groups[c] {
			if !r.HasEstimate() {
				continue
			}
			s.Points = append(s.Points, Point{Year: r.Year, Estimate: r.Estimate, Low: r.Low, High: r.High})
		}
		if len(s.Points) > 0 {
			series = append(series, s)
		}
	}
	return series
}

// RenderTimeSeries draws series as a PNG: one line (or one group of bars)
// per country, with asymmetric error bars when opts.ErrorBars is set.
// An empty series list still yields a chart with axes.
func RenderTimeSeries(w io.Writer, series []Series, opts Options) error {
	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = "Estimated TB Prevalence Over Time"
	}
	p.X.Label.Text = "Year"
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())

	var err error
	if opts.Mode == ModeBar {
		err = addBarSeries(p, series, opts.ErrorBars)
	} else {
		err = addLineSeries(p, series, opts.ErrorBars)
	}
	if err != nil {
		return err
	}

	if p.Y.Min > 0 {
		p.Y.Min = 0
	}

	width, height := opts.size()
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func addLineSeries(p *plot.Plot, series []Series, errorBars bool) error {
	p.X.Tick.Marker = yearTicks{}

	for i, s := range series {
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j] = plotter.XY{X: float64(pt.Year), Y: pt.Estimate}
		}

		line, scatter, err := plotter.NewLinePoints(xys)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.Country, err)
		}
		c := seriesColor(i)
		line.Color = c
		line.Width = vg.Points(1.5)
		scatter.Color = c
		scatter.Shape = draw.CircleGlyph{}
		scatter.Radius = vg.Points(3)
		p.Add(line, scatter)
		p.Legend.Add(s.Country, line, scatter)

		if pts := seriesErrors(s.Points, 0, nil); errorBars && pts.Len() > 0 {
			eb, err := plotter.NewYErrorBars(pts)
			if err != nil {
				return fmt.Errorf("series %q: %w", s.Country, err)
			}
			eb.Color = c
			eb.CapWidth = vg.Points(6)
			p.Add(eb)
		}
	}
	return nil
}

// seriesErrors returns error bars for the points that have both bounds.
// Bars sit at the point's year, or at pos[year]+offset when pos is set.
func seriesErrors(points []Point, offset float64, pos map[int]float64) *errorPoints {
	pts := &errorPoints{}
	for _, pt := range points {
		minus, plus, ok := errs(pt.Estimate, pt.Low, pt.High)
		if !ok {
			continue
		}
		x := float64(pt.Year)
		if pos != nil {
			x = pos[pt.Year] + offset
		}
		pts.add(x, pt.Estimate, minus, plus)
	}
	return pts
}

// addBarSeries draws one bar per country for every year, grouped by year.
// Years are categories, so gaps in the data don't leave holes.
func addBarSeries(p *plot.Plot, series []Series, errorBars bool) error {
	yearSet := make(map[int]bool)
	for _, s := range series {
		for _, pt := range s.Points {
			yearSet[pt.Year] = true
		}
	}
	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	pos := make(map[int]float64, len(years))
	labels := make([]string, len(years))
	for i, y := range years {
		pos[y] = float64(i)
		labels[i] = strconv.Itoa(y)
	}
	p.X.Tick.Marker = categoryTicks(labels, true)

	n := len(series)
	if n == 0 {
		return nil
	}
	group := 0.8
	width := group / float64(n)

	for i, s := range series {
		offset := -group/2 + width/2 + float64(i)*width
		c := seriesColor(i)

		var values []barValue
		for _, pt := range s.Points {
			values = append(values, barValue{pos: pos[pt.Year], value: pt.Estimate})
		}

		b := newBars(values, 0, width*0.9, offset, false, c)
		p.Add(b)
		p.Legend.Add(s.Country, legendSwatch{c})

		if pts := seriesErrors(s.Points, offset, pos); errorBars && pts.Len() > 0 {
			eb, err := plotter.NewYErrorBars(pts)
			if err != nil {
				return fmt.Errorf("series %q: %w", s.Country, err)
			}
			eb.CapWidth = vg.Points(5)
			p.Add(eb)
		}
	}

	p.X.Min = -0.5
	p.X.Max = float64(len(years)) - 0.5
	return nil
}

// legendSwatch draws a filled square in the legend.
type legendSwatch struct {
	c color.Color
}

func (l legendSwatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(l.c, c.ClipPolygonY(pts))
}
