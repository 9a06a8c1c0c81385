package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/anrid/tb-burden/pkg/stats"
)

// Bar is one country's value in a comparison panel.
type Bar struct {
	Country string
	Value   float64
	Low     float64
	High    float64
}

// Panel holds the bars for a single year.
type Panel struct {
	Year int
	Bars []Bar

	// Skipped counts rows that matched but had no positive estimate and
	// so cannot be placed on a log axis.
	Skipped int
}

// Comparison is a side-by-side view of two years.
type Comparison struct {
	Countries []string
	Panels    [2]Panel
}

// ComparisonYears picks the first and last year of a selected range.
func ComparisonYears(s stats.FilterState) [2]int {
	return [2]int{s.YearMin, s.YearMax}
}

// BuildComparison collects, for each of the two years, the rows of the
// selected countries. A country without a row for a year is simply absent
// from that panel.
func BuildComparison(records []stats.Record, countries []string, years [2]int) Comparison {
	selected := make(map[string]bool, len(countries))
	for _, c := range countries {
		selected[c] = true
	}

	cmp := Comparison{Countries: append([]string(nil), countries...)}
	sort.Strings(cmp.Countries)

	for i, y := range years {
		panel := Panel{Year: y}
		for _, r := range records {
			if r.Year != y || !selected[r.Country] {
				continue
			}
			if !r.HasEstimate() || r.Estimate <= 0 {
				panel.Skipped++
				continue
			}
			panel.Bars = append(panel.Bars, Bar{Country: r.Country, Value: r.Estimate, Low: r.Low, High: r.High})
		}
		sort.SliceStable(panel.Bars, func(a, b int) bool { return panel.Bars[a].Country < panel.Bars[b].Country })
		cmp.Panels[i] = panel
	}
	return cmp
}

// logRange returns powers of ten enclosing every bar and bound.
func (c Comparison) logRange() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range c.Panels {
		for _, b := range p.Bars {
			for _, v := range []float64{b.Value, b.Low, b.High} {
				if math.IsNaN(v) || v <= 0 {
					continue
				}
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
		}
	}
	if math.IsInf(lo, 1) {
		return 1, 10
	}
	lo = math.Pow(10, math.Floor(math.Log10(lo)))
	hi = math.Pow(10, math.Ceil(math.Log10(hi)))
	if hi <= lo {
		hi = lo * 10
	}
	return lo, hi
}

// panelErrors returns horizontal error bars for the bars of panel that have
// both bounds. Lower whiskers stop at floor, the left edge of the log axis.
func panelErrors(panel Panel, row map[string]float64, floor float64) *errorPoints {
	pts := &errorPoints{}
	for _, b := range panel.Bars {
		minus, plus, ok := errs(b.Value, b.Low, b.High)
		if !ok {
			continue
		}
		pts.add(b.Value, row[b.Country], math.Min(minus, b.Value-floor), plus)
	}
	return pts
}

var panelColors = [2]color.Color{
	color.RGBA{R: 135, G: 206, B: 235, A: 255}, // skyblue
	color.RGBA{R: 144, G: 238, B: 144, A: 255}, // lightgreen
}

// RenderComparison draws the two panels next to each other as a PNG. Both
// panels share the country axis and a logarithmic value axis. Panels
// without bars are drawn with axes only. Error bars are drawn only when
// opts.ErrorBars is set.
func RenderComparison(w io.Writer, cmp Comparison, opts Options) error {
	xmin, xmax := cmp.logRange()

	row := make(map[string]float64, len(cmp.Countries))
	for i, c := range cmp.Countries {
		row[c] = float64(i)
	}
	rows := len(cmp.Countries)
	if rows == 0 {
		rows = 1
	}

	plots := [][]*plot.Plot{make([]*plot.Plot, 2)}
	for i, panel := range cmp.Panels {
		p := plot.New()
		p.Title.Text = fmt.Sprint(panel.Year)
		p.X.Label.Text = "Estimated TB Prevalence (log scale)"
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
		p.Y.Tick.Marker = categoryTicks(cmp.Countries, i == 0)
		if i == 0 {
			p.Y.Label.Text = "Country"
		}
		p.Add(plotter.NewGrid())

		if len(panel.Bars) > 0 {
			var values []barValue
			for _, b := range panel.Bars {
				values = append(values, barValue{pos: row[b.Country], value: b.Value})
			}
			p.Add(newBars(values, xmin, 0.7, 0, true, panelColors[i]))
		}

		if pts := panelErrors(panel, row, xmin); opts.ErrorBars && pts.Len() > 0 {
			eb, err := plotter.NewXErrorBars(pts)
			if err != nil {
				return fmt.Errorf("panel %d: %w", panel.Year, err)
			}
			eb.Color = color.RGBA{R: 100, G: 100, B: 100, A: 153}
			eb.CapWidth = vg.Points(5)
			p.Add(eb)
		}

		// Fixed after Add so every panel gets the same, strictly positive range.
		p.X.Min, p.X.Max = xmin, xmax
		p.Y.Min, p.Y.Max = -0.5, float64(rows)-0.5
		plots[0][i] = p
	}

	width, height := opts.size()
	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      2,
		PadX:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 4,
	}

	canvases := plot.Align(plots, tiles, dc)
	for j := range plots[0] {
		plots[0][j].Draw(canvases[0][j])
	}

	_, err := vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	return err
}
