package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// LoadFile reads a TB burden table from path and normalizes it using shape.
// CSV, XLSX and XLS files are supported; the format is picked by extension.
func LoadFile(path string, shape Shape) (*Dataset, error) {
	var df dataframe.DataFrame

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		rows, err := ExtractRowsFromFile(path)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("%w: %s has no rows", ErrMalformed, path)
		}
		if df, err = loadFrame(rows); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case ".csv", ".txt", "":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if df, err = readCSVFrame(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	ds, err := fromFrame(df, shape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.Path = path
	return ds, nil
}

// LoadCSV reads a CSV table from r and normalizes it using shape.
func LoadCSV(r io.Reader, shape Shape) (*Dataset, error) {
	df, err := readCSVFrame(r)
	if err != nil {
		return nil, err
	}
	return fromFrame(df, shape)
}

func readCSVFrame(r io.Reader) (dataframe.DataFrame, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return loadFrame(rows)
}

// loadFrame builds a frame from rows, the first of which is the header.
// Every column is read as a string; numeric parsing happens in fromFrame so
// that blank cells do not change a column's type.
func loadFrame(rows [][]string) (dataframe.DataFrame, error) {
	if len(rows) > 0 {
		if err := checkHeader(rows[0]); err != nil {
			return dataframe.DataFrame{}, err
		}
	}
	return dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
	), nil
}

// checkHeader rejects a header that repeats a column name. The frame would
// otherwise suffix both copies and the column would look missing.
func checkHeader(header []string) error {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if seen[h] {
			return fmt.Errorf("%w: duplicate column %q", ErrMalformed, h)
		}
		seen[h] = true
	}
	return nil
}

// fromFrame applies the column plan for shape to df and converts the
// resulting frame into typed records.
func fromFrame(df dataframe.DataFrame, shape Shape) (*Dataset, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, df.Err)
	}

	plan := planColumns(df.Names(), shape)
	if len(plan.drop) > 0 {
		df = df.Drop(plan.drop)
		if df.Err != nil {
			return nil, fmt.Errorf("%w: dropping columns: %v", ErrMalformed, df.Err)
		}
	}

	// Rename in two passes so a header never collides with another
	// column's final name halfway through.
	i := 0
	tmp := make(map[string]string, len(plan.rename))
	for raw, final := range plan.rename {
		if raw == final {
			continue
		}
		t := fmt.Sprintf("__col%d", i)
		i++
		df = df.Rename(t, raw)
		tmp[t] = final
	}
	for t, final := range tmp {
		df = df.Rename(final, t)
	}
	if df.Err != nil {
		return nil, fmt.Errorf("%w: renaming columns: %v", ErrMalformed, df.Err)
	}

	names := df.Names()
	has := make(map[string]bool, len(names))
	for _, n := range names {
		has[n] = true
	}
	for _, c := range []string{ColCountry, ColYear} {
		if !has[c] {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, c)
		}
	}

	countries := df.Col(ColCountry).Records()
	years := df.Col(ColYear).Records()
	column := func(name string) []string {
		if !has[name] {
			return nil
		}
		return df.Col(name).Records()
	}
	est, low, high := column(ColEstimate), column(ColLow), column(ColHigh)

	ds := &Dataset{
		Shape:       shape,
		Columns:     names,
		HasEstimate: has[ColEstimate],
		HasBounds:   has[ColLow] && has[ColHigh],
		Loaded:      time.Now(),
	}

	for row := range countries {
		country := strings.TrimSpace(countries[row])
		if country == "" || country == "NaN" {
			continue
		}
		year, err := parseYear(years[row])
		if err != nil {
			// +2 for the header line and 1-based numbering.
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, row+2, err)
		}
		ds.Records = append(ds.Records, Record{
			Country:  country,
			Year:     year,
			Estimate: cell(est, row),
			Low:      cell(low, row),
			High:     cell(high, row),
		})
	}

	return ds, nil
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	// Spreadsheets sometimes hand years back as "2010.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("bad year %q", s)
	}
	return int(f), nil
}

// cell parses vals[row] as a float, returning NaN for absent or
// unparsable values.
func cell(vals []string, row int) float64 {
	if row >= len(vals) {
		return math.NaN()
	}
	s := strings.TrimSpace(vals[row])
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
