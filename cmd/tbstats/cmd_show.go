package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/anrid/tb-burden/pkg/report"
	"github.com/anrid/tb-burden/pkg/stats"
)

var (
	showSel  selectionFlags
	showDump bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print dataset info, a data preview and summary statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openDatabase()
		ds, err := db.Dataset()
		if err != nil {
			return err
		}
		if err := db.Info(os.Stdout); err != nil {
			return err
		}

		a := stats.Analyze(ds, showSel.state(ds))
		if showDump {
			stats.Dump(os.Stdout, a)
			return nil
		}
		return printAnalysis(os.Stdout, a)
	},
}

func init() {
	showSel.register(showCmd)
	showCmd.Flags().BoolVar(&showDump, "dump", false, "Dump the full analysis state instead of tables")
}

func printAnalysis(w io.Writer, a stats.Analysis) error {
	fmt.Fprintf(w, "Countries: %v  Years: %d-%d  Rows: %d\n\n",
		a.State.Countries, a.State.YearMin, a.State.YearMax, len(a.View))

	if err := report.WriteNotices(w, a.Notices); err != nil {
		return err
	}

	fmt.Fprintln(w, "Filtered data preview")
	report.WritePreview(w, a.Preview)

	if len(a.Summary) > 0 {
		fmt.Fprintln(w, "\nSummary statistics")
		report.WriteSummary(w, a.Summary)
	}
	return nil
}
