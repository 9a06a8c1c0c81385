package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anrid/tb-burden/pkg/chart"
	"github.com/anrid/tb-burden/pkg/report"
	"github.com/anrid/tb-burden/pkg/stats"
)

var (
	createSel  selectionFlags
	createOut  string
	createMode string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Write the summary workbook and charts for a selection to a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDatabase().Dataset()
		if err != nil {
			return err
		}

		a := stats.Analyze(ds, createSel.state(ds))
		for _, n := range a.Notices {
			logger.Info("notice", zap.String("level", string(n.Level)), zap.String("text", n.Text))
		}

		opts := chart.Options{
			Width:  cfg.Chart.Width,
			Height: cfg.Chart.Height,
			Mode:   chart.ParseMode(createMode),
		}
		files, err := createOutputs(createOut, a, opts)
		if err != nil {
			return err
		}
		for _, f := range files {
			logger.Info("wrote file", zap.String("path", f))
		}
		return nil
	},
}

func init() {
	createSel.register(createCmd)
	createCmd.Flags().StringVarP(&createOut, "out", "o", ".", "Output directory")
	createCmd.Flags().StringVar(&createMode, "mode", "line", "Time series style: line or bar")
}

// createOutputs writes every output that a supports into dir and returns
// the paths written. Each file is replaced atomically.
func createOutputs(dir string, a stats.Analysis, opts chart.Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var written []string
	write := func(name string, fn func(fw *report.FileWriter) error) error {
		p := filepath.Join(dir, name)
		if err := report.WriteFile(p, fn); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		written = append(written, p)
		return nil
	}

	if err := write("summary.xlsx", func(fw *report.FileWriter) error {
		return report.WriteWorkbook(fw, a)
	}); err != nil {
		return written, err
	}

	if !a.ShowEstimate {
		return written, nil
	}

	barOpts := opts
	barOpts.ErrorBars = a.ShowErrorBars
	if err := write("timeseries.png", func(fw *report.FileWriter) error {
		return chart.RenderTimeSeries(fw, chart.BuildTimeSeries(a.View), barOpts)
	}); err != nil {
		return written, err
	}

	cmp := chart.BuildComparison(a.View, a.State.Countries, chart.ComparisonYears(a.State))
	if err := write("compare.png", func(fw *report.FileWriter) error {
		return chart.RenderComparison(fw, cmp, barOpts)
	}); err != nil {
		return written, err
	}

	if len(a.Summary) > 0 {
		if err := write("means.png", func(fw *report.FileWriter) error {
			return chart.RenderMeans(fw, a.Summary, opts)
		}); err != nil {
			return written, err
		}
	}
	return written, nil
}
