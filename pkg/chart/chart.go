// Package chart renders TB prevalence charts as PNG images.
//
// Each chart is built in two steps: a Build function turns filtered records
// into a plain model (series, panels), and a Render function draws that model.
// The models are what the dashboard and tests inspect; rendering only needs
// the model and Options.
package chart

import (
	"errors"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned by renderers that cannot draw an empty chart.
var ErrNoData = errors.New("no data to chart")

// Mode selects how a time series is drawn.
type Mode string

const (
	ModeLine Mode = "line"
	ModeBar  Mode = "bar"
)

// ParseMode returns ModeBar for "bar" and ModeLine for anything else.
func ParseMode(s string) Mode {
	if Mode(s) == ModeBar {
		return ModeBar
	}
	return ModeLine
}

// Options controls image size and optional decorations.
type Options struct {
	Width     int // pixels
	Height    int // pixels
	Title     string
	Mode      Mode
	ErrorBars bool
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 1000
	}
	if h <= 0 {
		h = 500
	}
	return px(w), px(h)
}

// px converts pixels to a length at the 96 DPI vgimg renders with.
func px(n int) vg.Length {
	return vg.Length(n) * vg.Inch / 96
}

const yLabel = "Estimated Prevalence of TB (all forms)"

func seriesColor(i int) color.Color {
	return plotutil.Color(i)
}

// yearTicks labels integer years, thinning them out on long ranges.
type yearTicks struct{}

func (yearTicks) Ticks(min, max float64) []plot.Tick {
	lo, hi := int(math.Ceil(min)), int(math.Floor(max))
	if hi < lo {
		return nil
	}
	step := 1
	for (hi-lo)/step > 12 {
		step *= 2
	}
	var ticks []plot.Tick
	for y := lo; y <= hi; y++ {
		t := plot.Tick{Value: float64(y)}
		if (y-lo)%step == 0 {
			t.Label = strconv.Itoa(y)
		}
		ticks = append(ticks, t)
	}
	return ticks
}

// categoryTicks puts one labelled tick at each integer position.
// Labels may be blank to draw an unlabelled shared axis.
func categoryTicks(labels []string, show bool) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(labels))
	for i, l := range labels {
		ticks[i] = plot.Tick{Value: float64(i)}
		if show {
			ticks[i].Label = l
		}
	}
	return ticks
}

// errs clamps an asymmetric error to non-negative magnitudes. ok is false
// when either bound is missing, in which case no error bar is drawn.
func errs(v, low, high float64) (minus, plus float64, ok bool) {
	if math.IsNaN(low) || math.IsNaN(high) {
		return 0, 0, false
	}
	return math.Max(v-low, 0), math.Max(high-v, 0), true
}
