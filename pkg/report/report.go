// Package report formats analysis results for terminals and spreadsheets.
package report

import (
	"io"
	"math"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/anrid/tb-burden/pkg/stats"
)

var printer = message.NewPrinter(language.English)

// Number formats v with two decimals and thousands separators; NaN is blank.
func Number(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return printer.Sprintf("%.2f", v)
}

// WriteSummary renders the per-country summary as a table.
func WriteSummary(w io.Writer, rows []stats.SummaryRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Country", "ISO3", "Mean", "Max", "Min", "Rows"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, r := range rows {
		table.Append([]string{
			r.Country,
			stats.ISOCode(r.Country),
			Number(r.Mean),
			Number(r.Max),
			Number(r.Min),
			strconv.Itoa(r.Count),
		})
	}
	table.Render()
}

// WritePreview renders the first filtered rows.
func WritePreview(w io.Writer, recs []stats.Record) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Country", "Year", "Estimate", "Low", "High"})
	for _, r := range recs {
		table.Append([]string{
			r.Country,
			strconv.Itoa(r.Year),
			Number(r.Estimate),
			Number(r.Low),
			Number(r.High),
		})
	}
	table.Render()
}

var levelColors = map[stats.Level]*color.Color{
	stats.LevelError:   color.New(color.FgRed, color.Bold),
	stats.LevelWarning: color.New(color.FgYellow),
	stats.LevelInfo:    color.New(color.FgCyan),
}

// WriteNotices prints one line per notice, colored by level.
func WriteNotices(w io.Writer, notices []stats.Notice) error {
	for _, n := range notices {
		c, ok := levelColors[n.Level]
		if !ok {
			c = color.New(color.Reset)
		}
		if _, err := c.Fprintf(w, "%s: %s\n", n.Level, n.Text); err != nil {
			return err
		}
	}
	return nil
}
