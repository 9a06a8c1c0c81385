// Package dashboard serves the TB prevalence dashboard over HTTP.
//
// Every request is handled on its own: the query string is parsed into a
// selection, the filter and aggregation steps run against the shared,
// read-only dataset, and the result is rendered. There is no session state.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/anrid/tb-burden/pkg/chart"
	"github.com/anrid/tb-burden/pkg/report"
	"github.com/anrid/tb-burden/pkg/stats"
)

// Options configures a Server.
type Options struct {
	Addr                string
	DefaultCountry      string
	DefaultCountryCount int
	ChartWidth          int
	ChartHeight         int
}

// Server is the dashboard HTTP server.
type Server struct {
	db   *stats.Database
	opts Options
	log  *zap.Logger
	mux  *http.ServeMux
}

// New returns a Server over db. A nil logger disables logging.
func New(db *stats.Database, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{db: db, opts: opts, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/chart/timeseries.png", s.handleTimeSeries)
	s.mux.HandleFunc("/chart/compare.png", s.handleCompare)
	s.mux.HandleFunc("/chart/means.png", s.handleMeans)
	s.mux.HandleFunc("/export.xlsx", s.handleExport)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	return s
}

// Handler returns the root handler with request logging.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.mux.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.opts.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// analyze loads the dataset and runs the pipeline for the request. On a
// dataset error it writes the error response itself and returns false.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (Query, stats.Analysis, bool) {
	ds, err := s.db.Dataset()
	if err != nil {
		s.log.Error("dataset unavailable", zap.String("path", s.db.Path), zap.Error(err))
		if r.URL.Path == "/" {
			s.renderError(w, err)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return Query{}, stats.Analysis{}, false
	}

	q := s.parseQuery(r.URL.Query(), ds)
	return q, stats.Analyze(ds, q.State), true
}

func (s *Server) chartOptions() chart.Options {
	return chart.Options{Width: s.opts.ChartWidth, Height: s.opts.ChartHeight}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	q, a, ok := s.analyze(w, r)
	if !ok {
		return
	}
	ds, _ := s.db.Dataset()
	s.renderPage(w, newPage(ds, q, a))
}

func (s *Server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	q, a, ok := s.analyze(w, r)
	if !ok {
		return
	}
	if !a.ShowEstimate {
		http.Error(w, "no prevalence estimates in dataset", http.StatusNotFound)
		return
	}

	opts := s.chartOptions()
	opts.Mode = q.Mode
	opts.ErrorBars = a.ShowErrorBars
	s.writePNG(w, "timeseries", func(buf *bytes.Buffer) error {
		return chart.RenderTimeSeries(buf, chart.BuildTimeSeries(a.View), opts)
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	_, a, ok := s.analyze(w, r)
	if !ok {
		return
	}
	if !a.ShowEstimate {
		http.Error(w, "no prevalence estimates in dataset", http.StatusNotFound)
		return
	}

	opts := s.chartOptions()
	opts.ErrorBars = a.ShowErrorBars
	cmp := chart.BuildComparison(a.View, a.State.Countries, chart.ComparisonYears(a.State))
	s.writePNG(w, "compare", func(buf *bytes.Buffer) error {
		return chart.RenderComparison(buf, cmp, opts)
	})
}

func (s *Server) handleMeans(w http.ResponseWriter, r *http.Request) {
	_, a, ok := s.analyze(w, r)
	if !ok {
		return
	}
	s.writePNG(w, "means", func(buf *bytes.Buffer) error {
		return chart.RenderMeans(buf, a.Summary, s.chartOptions())
	})
}

// writePNG renders into memory first so a failed render never sends a
// partial image.
func (s *Server) writePNG(w http.ResponseWriter, name string, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		s.log.Error("chart render failed", zap.String("chart", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	_, a, ok := s.analyze(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWorkbook(&buf, a); err != nil {
		s.log.Error("export failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q",
		fmt.Sprintf("tb-prevalence-%d-%d.xlsx", a.State.YearMin, a.State.YearMax)))
	w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.db.Dataset(); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	fmt.Fprintln(w, "ok")
}
