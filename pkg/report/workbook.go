package report

import (
	"io"
	"math"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"

	"github.com/anrid/tb-burden/pkg/stats"
)

const (
	SummarySheet = "Summary"
	DataSheet    = "Data"
)

// WriteWorkbook writes the summary and the filtered rows of a as an XLSX
// workbook with two sheets.
func WriteWorkbook(w io.Writer, a stats.Analysis) error {
	f := xlsx.NewFile()
	f.SetSheetName("Sheet1", SummarySheet)
	f.NewSheet(DataSheet)

	summary := [][]interface{}{{"Country", "ISO3", "Mean", "Max", "Min", "Rows"}}
	for _, r := range a.Summary {
		summary = append(summary, []interface{}{r.Country, stats.ISOCode(r.Country), r.Mean, r.Max, r.Min, r.Count})
	}
	if err := setRows(f, SummarySheet, summary); err != nil {
		return err
	}

	data := [][]interface{}{{"Country", "Year", "Estimate", "Low", "High"}}
	for _, r := range a.View {
		data = append(data, []interface{}{r.Country, r.Year, cellValue(r.Estimate), cellValue(r.Low), cellValue(r.High)})
	}
	if err := setRows(f, DataSheet, data); err != nil {
		return err
	}

	for _, sheet := range []string{SummarySheet, DataSheet} {
		if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func setRows(f *xlsx.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, v := range row {
			if v == nil {
				continue
			}
			cell, err := xlsx.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// cellValue leaves missing measurements as empty cells.
func cellValue(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
