package dashboard

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/anrid/tb-burden/pkg/chart"
	"github.com/anrid/tb-burden/pkg/report"
	"github.com/anrid/tb-burden/pkg/stats"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"num":  report.Number,
	"iso":  stats.ISOCode,
	"year": strconv.Itoa,
}).ParseFS(templateFS, "templates/page.html"))

type countryOption struct {
	Name     string
	Selected bool
}

// page is the view model for the dashboard template.
type page struct {
	Error string

	Countries []countryOption
	FirstYear int
	LastYear  int
	Query     Query
	QS        template.URL

	Analysis stats.Analysis
	Rows     int
}

func newPage(ds *stats.Dataset, q Query, a stats.Analysis) page {
	selected := make(map[string]bool, len(q.State.Countries))
	for _, c := range q.State.Countries {
		selected[c] = true
	}
	p := page{
		Query:    q,
		QS:       template.URL(q.Encode()),
		Analysis: a,
		Rows:     len(a.View),
	}
	for _, c := range ds.Countries() {
		p.Countries = append(p.Countries, countryOption{Name: c, Selected: selected[c]})
	}
	p.FirstYear, p.LastYear = ds.YearBounds()
	return p
}

// Compare reports whether the comparison chart is selected.
func (p page) Compare() bool { return p.Query.Plot == PlotCompare }

// Bars reports whether the time series is drawn as bars.
func (p page) Bars() bool { return p.Query.Mode == chart.ModeBar }

func (s *Server) renderPage(w http.ResponseWriter, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if p.Error != "" {
		w.WriteHeader(http.StatusInternalServerError)
	}
	if err := pageTmpl.Execute(w, p); err != nil {
		s.log.Error("template failed", zap.Error(err))
	}
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	s.renderPage(w, page{Error: err.Error()})
}
