package dashboard

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/anrid/tb-burden/pkg/chart"
	"github.com/anrid/tb-burden/pkg/stats"
)

// Plot selects the main chart.
type Plot string

const (
	PlotTimeSeries Plot = "timeseries"
	PlotCompare    Plot = "compare"
)

func parsePlot(s string) Plot {
	if Plot(s) == PlotCompare {
		return PlotCompare
	}
	return PlotTimeSeries
}

// Query is everything a request can ask for.
type Query struct {
	State stats.FilterState
	Plot  Plot
	Mode  chart.Mode
}

// parseQuery reads the selection from q, falling back to defaults for
// anything absent or unparsable. The "sel" marker tells a submitted form
// with no countries ticked apart from a first visit.
func (s *Server) parseQuery(q url.Values, ds *stats.Dataset) Query {
	def := stats.DefaultFilterState(ds, s.opts.DefaultCountry, s.opts.DefaultCountryCount)

	state := def
	if _, submitted := q["sel"]; submitted || len(q["country"]) > 0 {
		state.Countries = nil
		for _, c := range q["country"] {
			if c = strings.TrimSpace(c); c != "" {
				state.Countries = append(state.Countries, c)
			}
		}
	}
	if v, err := strconv.Atoi(q.Get("from")); err == nil {
		state.YearMin = v
	}
	if v, err := strconv.Atoi(q.Get("to")); err == nil {
		state.YearMax = v
	}

	return Query{
		State: state.Clamp(ds),
		Plot:  parsePlot(q.Get("plot")),
		Mode:  chart.ParseMode(q.Get("mode")),
	}
}

// Encode turns q back into a query string, used for chart and export links.
func (q Query) Encode() string {
	v := url.Values{}
	v.Set("sel", "1")
	for _, c := range q.State.Countries {
		v.Add("country", c)
	}
	v.Set("from", strconv.Itoa(q.State.YearMin))
	v.Set("to", strconv.Itoa(q.State.YearMax))
	v.Set("plot", string(q.Plot))
	v.Set("mode", string(q.Mode))
	return v.Encode()
}
