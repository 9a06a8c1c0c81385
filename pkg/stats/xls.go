package stats

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/anrid/xls"
)

// ExtractRowsFromFile returns the rows of the first sheet of an XLS or XLSX
// workbook. Every row is padded to the width of the header row.
func ExtractRowsFromFile(path string) ([][]string, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	handler := func(r []string) {
		rows = append(rows, r)
	}

	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		err = ExtractDataFromXLSX(data, handler)
	} else {
		err = ExtractDataFromXLS(data, handler)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	return padRows(rows), nil
}

// ExtractDataFromXLS calls handler for every row of the first sheet.
func ExtractDataFromXLS(data []byte, handler func(r []string)) error {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return err
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return fmt.Errorf("workbook has no sheets")
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		var cols []string
		for j := 0; j <= row.LastCol(); j++ {
			cols = append(cols, row.Col(j))
		}
		handler(cols)
	}
	return nil
}

// ExtractDataFromXLSX calls handler for every row of the first sheet.
func ExtractDataFromXLSX(data []byte, handler func(r []string)) error {
	wb, err := xlsx.OpenReader(bytes.NewReader(data))
	if err != nil {
		return err
	}

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return fmt.Errorf("could not get rows for sheet %q: %v", sheets[0], err)
	}
	for _, r := range rows {
		handler(r)
	}
	return nil
}

// padRows drops blank rows and pads or truncates the rest to the header width.
// Spreadsheet readers trim trailing empty cells, which a dataframe cannot load.
func padRows(rows [][]string) [][]string {
	var out [][]string
	width := -1
	for _, r := range rows {
		if isBlank(r) {
			continue
		}
		if width < 0 {
			width = len(r)
		}
		p := make([]string, width)
		copy(p, r)
		out = append(out, p)
	}
	return out
}

func isBlank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
