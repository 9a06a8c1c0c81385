package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// barValue is one bar: its category position and its value.
type barValue struct {
	pos   float64
	value float64
}

// bars draws filled rectangles whose thickness is given in data units, so
// that error bars placed at pos+offset line up with them exactly. Bars grow
// from base, which must be positive when the value axis is logarithmic.
type bars struct {
	values     []barValue
	base       float64
	width      float64
	offset     float64
	horizontal bool

	color color.Color
	line  draw.LineStyle
}

func newBars(values []barValue, base, width, offset float64, horizontal bool, c color.Color) *bars {
	return &bars{
		values:     values,
		base:       base,
		width:      width,
		offset:     offset,
		horizontal: horizontal,
		color:      c,
		line: draw.LineStyle{
			Color: color.Gray{Y: 90},
			Width: vg.Points(0.5),
		},
	}
}

// Plot implements plot.Plotter.
func (b *bars) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	for _, v := range b.values {
		lo := v.pos + b.offset - b.width/2
		hi := v.pos + b.offset + b.width/2

		var pts []vg.Point
		if b.horizontal {
			x0, x1 := trX(b.base), trX(v.value)
			y0, y1 := trY(lo), trY(hi)
			pts = []vg.Point{{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}}
		} else {
			x0, x1 := trX(lo), trX(hi)
			y0, y1 := trY(b.base), trY(v.value)
			pts = []vg.Point{{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}}
		}

		c.FillPolygon(b.color, c.ClipPolygonXY(pts))
		c.StrokeLines(b.line, c.ClipLinesXY(append(pts, pts[0]))...)
	}
}

// DataRange implements plot.DataRanger.
func (b *bars) DataRange() (xmin, xmax, ymin, ymax float64) {
	pmin, pmax := math.Inf(1), math.Inf(-1)
	vmin, vmax := b.base, b.base
	for _, v := range b.values {
		pmin = math.Min(pmin, v.pos+b.offset-b.width/2)
		pmax = math.Max(pmax, v.pos+b.offset+b.width/2)
		vmin = math.Min(vmin, v.value)
		vmax = math.Max(vmax, v.value)
	}
	if len(b.values) == 0 {
		pmin, pmax = 0, 0
	}
	if b.horizontal {
		return vmin, vmax, pmin, pmax
	}
	return pmin, pmax, vmin, vmax
}

// errorPoints feeds plotter error bars: XY gives the bar tip, and the
// error methods give the distance to each bound.
type errorPoints struct {
	xs, ys      []float64
	minus, plus []float64
}

func (e *errorPoints) add(x, y, minus, plus float64) {
	e.xs = append(e.xs, x)
	e.ys = append(e.ys, y)
	e.minus = append(e.minus, minus)
	e.plus = append(e.plus, plus)
}

func (e *errorPoints) Len() int                        { return len(e.xs) }
func (e *errorPoints) XY(i int) (float64, float64)     { return e.xs[i], e.ys[i] }
func (e *errorPoints) XError(i int) (float64, float64) { return e.minus[i], e.plus[i] }
func (e *errorPoints) YError(i int) (float64, float64) { return e.minus[i], e.plus[i] }
