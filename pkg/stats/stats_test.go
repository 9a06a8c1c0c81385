package stats

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const whoCSV = `Country or territory name,ISO 2-character country/territory code,ISO 3-character country/territory code,ISO numeric country/territory code,Region,Year,Estimated prevalence of TB (all forms),"Estimated prevalence of TB (all forms), low bound","Estimated prevalence of TB (all forms), high bound",Method to derive TBHIV estimates
India,IN,IND,356,SEA,2010,300,250,350,Model
India,IN,IND,356,SEA,2011,280,240,320,Model
India,IN,IND,356,SEA,2012,260,220,300,Model
Nigeria,NG,NGA,566,AFR,2010,150,100,200,Survey
Nigeria,NG,NGA,566,AFR,2011,,,,Survey
Nigeria,NG,NGA,566,AFR,2012,170,120,220,Survey
`

const plainCSV = `Country,Year,Estimated Prevalence,Estimated Prevalence Low,Estimated Prevalence High
India,2010,300,250,350
India,2011,280,240,320
India,2012,260,220,300
Nigeria,2010,150,100,200
Nigeria,2011,160,110,210
Nigeria,2012,170,120,220
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func mustLoad(t *testing.T, content string, shape Shape) *Dataset {
	t.Helper()
	ds, err := LoadCSV(strings.NewReader(content), shape)
	require.NoError(t, err)
	return ds
}

func TestNormalizeColumnName(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"Year", "year"},
		{"  Country ", "country"},
		{"\ufeffCountry", "country"},
		{"Estimated prevalence of TB (all forms)", "estimated_prevalence_of_tb_all_forms"},
		{"Estimated prevalence of TB (all forms), low bound", "estimated_prevalence_of_tb_all_forms,_low_bound"},
	} {
		assert.Equal(t, tc.want, NormalizeColumnName(tc.in), "NormalizeColumnName(%q)", tc.in)
	}
}

func TestParseShape(t *testing.T) {
	s, err := ParseShape("")
	require.NoError(t, err)
	assert.Equal(t, ShapeRenamed, s)

	s, err = ParseShape("Normalized")
	require.NoError(t, err)
	assert.Equal(t, ShapeNormalized, s)

	_, err = ParseShape("pivot")
	assert.Error(t, err)
}

func TestLoadCSV_Renamed(t *testing.T) {
	ds := mustLoad(t, whoCSV, ShapeRenamed)

	assert.ElementsMatch(t, []string{ColCountry, ColYear, ColEstimate, ColLow, ColHigh}, ds.Columns)
	assert.True(t, ds.HasEstimate)
	assert.True(t, ds.HasBounds)
	require.Len(t, ds.Records, 6)

	if diff := cmp.Diff(Record{"India", 2010, 300, 250, 350}, ds.Records[0]); diff != "" {
		t.Error("Didn't load first record correctly:\n" + diff)
	}

	blank := ds.Records[4]
	assert.Equal(t, "Nigeria", blank.Country)
	assert.Equal(t, 2011, blank.Year)
	assert.True(t, math.IsNaN(blank.Estimate))
	assert.False(t, blank.HasBounds())
}

func TestLoadCSV_NormalizedAliases(t *testing.T) {
	ds := mustLoad(t, whoCSV, ShapeNormalized)

	assert.Contains(t, ds.Columns, ColCountry)
	assert.Contains(t, ds.Columns, ColEstimate)
	assert.Contains(t, ds.Columns, "iso_2-character_country/territory_code")
	assert.True(t, ds.HasBounds)
	assert.Len(t, ds.Records, 6)
}

func TestLoadCSV_NormalizedPlainHeaders(t *testing.T) {
	ds := mustLoad(t, plainCSV, ShapeNormalized)

	want := []string{"country", "year", "estimated_prevalence", "estimated_prevalence_low", "estimated_prevalence_high"}
	if diff := cmp.Diff(want, ds.Columns); diff != "" {
		t.Error("Unexpected columns:\n" + diff)
	}
	assert.Equal(t, []string{"India", "Nigeria"}, ds.Countries())
	lo, hi := ds.YearBounds()
	assert.Equal(t, 2010, lo)
	assert.Equal(t, 2012, hi)
}

func TestLoadCSV_MissingYear(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("Country,Estimated Prevalence\nIndia,300\n"), ShapeNormalized)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), `"year"`)
}

func TestLoadCSV_MissingCountry(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("Year,Value\n2010,1\n"), ShapeRenamed)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestLoadCSV_BadYear(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("Country,Year\nIndia,soon\n"), ShapeNormalized)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestLoadCSV_Ragged(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("Country,Year\nIndia,2010,extra\n"), ShapeNormalized)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestLoadCSV_DuplicateHeader(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("Country,Year,Year\nIndia,2010,2011\n"), ShapeNormalized)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.False(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), `duplicate column "Year"`)

	_, err = LoadFile(writeFile(t, "dup.csv", "Country, Region ,Region\nIndia,SEA,SEA\n"), ShapeRenamed)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Contains(t, err.Error(), `"Region"`)
}

func TestCheckHeader_BlankCells(t *testing.T) {
	assert.NoError(t, checkHeader([]string{"Country", "", "Year", ""}))
}

func TestLoadCSV_NoBounds(t *testing.T) {
	ds := mustLoad(t, "Country,Year,Estimated Prevalence\nIndia,2010,300\n", ShapeNormalized)
	assert.True(t, ds.HasEstimate)
	assert.False(t, ds.HasBounds)
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"), ShapeRenamed)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadFile_Unsupported(t *testing.T) {
	_, err := LoadFile(writeFile(t, "data.json", "{}"), ShapeRenamed)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestDatabase_ReloadRoundTrip(t *testing.T) {
	db := NewDatabase(writeFile(t, "tb.csv", whoCSV), ShapeRenamed)

	first, err := db.Dataset()
	require.NoError(t, err)
	cached, err := db.Dataset()
	require.NoError(t, err)
	assert.Same(t, first, cached)

	fresh, err := db.Reload()
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
	assert.Equal(t, first.Columns, fresh.Columns)
	assert.Equal(t, len(first.Records), len(fresh.Records))
}

func TestDatabase_CachesFailure(t *testing.T) {
	p := filepath.Join(t.TempDir(), "late.csv")
	db := NewDatabase(p, ShapeRenamed)

	_, err := db.Dataset()
	require.Error(t, err)

	// Creating the file afterwards doesn't help: failures aren't retried.
	require.NoError(t, os.WriteFile(p, []byte(whoCSV), 0644))
	_, err = db.Dataset()
	assert.Error(t, err)
}

func TestDatabase_Info(t *testing.T) {
	db := NewDatabase(writeFile(t, "tb.csv", plainCSV), ShapeNormalized)
	var b bytes.Buffer
	require.NoError(t, db.Info(&b))
	assert.Contains(t, b.String(), "2010 - 2012")
	assert.Contains(t, b.String(), "Countries : 2")
}

func TestDefaultCountries(t *testing.T) {
	ds := mustLoad(t, plainCSV, ShapeNormalized)
	assert.Equal(t, []string{"India"}, DefaultCountries(ds, "India", 3))
	assert.Equal(t, []string{"India", "Nigeria"}, DefaultCountries(ds, "Peru", 3))
	assert.Equal(t, []string{"India"}, DefaultCountries(ds, "", 1))
}

func TestFilterState_Clamp(t *testing.T) {
	ds := mustLoad(t, plainCSV, ShapeNormalized)

	got := FilterState{
		Countries: []string{"Nigeria", "Atlantis", "Nigeria", "India"},
		YearMin:   2050,
		YearMax:   1990,
	}.Clamp(ds)

	want := FilterState{Countries: []string{"Nigeria", "India"}, YearMin: 2010, YearMax: 2012}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error("Clamp returned unexpected state:\n" + diff)
	}
}

func TestFilter_Scenario(t *testing.T) {
	ds := mustLoad(t, plainCSV, ShapeNormalized)

	view := Filter(ds.Records, FilterState{Countries: []string{"India"}, YearMin: 2010, YearMax: 2011})
	require.Len(t, view, 2)
	for _, r := range view {
		assert.Equal(t, "India", r.Country)
	}

	sum := Summarize(view)
	require.Len(t, sum, 1)
	assert.Equal(t, 290.0, sum[0].Mean)
	assert.Equal(t, 300.0, sum[0].Max)
	assert.Equal(t, 280.0, sum[0].Min)
}

func TestFilter_Properties(t *testing.T) {
	ds := mustLoad(t, plainCSV, ShapeNormalized)
	subsets := [][]string{nil, {"India"}, {"Nigeria"}, {"India", "Nigeria"}, {"Peru"}}

	for lo := 2009; lo <= 2013; lo++ {
		for hi := lo; hi <= 2013; hi++ {
			for _, sel := range subsets {
				s := FilterState{Countries: sel, YearMin: lo, YearMax: hi}
				allowed := make(map[string]bool)
				for _, c := range sel {
					allowed[c] = true
				}
				for _, r := range Filter(ds.Records, s) {
					if r.Year < lo || r.Year > hi {
						t.Errorf("Filter(%v) kept year %d", s, r.Year)
					}
					if !allowed[r.Country] {
						t.Errorf("Filter(%v) kept country %q", s, r.Country)
					}
				}
			}
		}
	}
}

func TestFilter_EmptySelection(t *testing.T) {
	ds := mustLoad(t, plainCSV, ShapeNormalized)
	view := Filter(ds.Records, FilterState{YearMin: 2010, YearMax: 2012})
	assert.NotNil(t, view)
	assert.Empty(t, view)
}

func TestSummarize_SortedAndRounded(t *testing.T) {
	view := []Record{
		{Country: "A", Year: 2010, Estimate: 1.004},
		{Country: "A", Year: 2011, Estimate: 2.001},
		{Country: "B", Year: 2010, Estimate: 10},
		{Country: "C", Year: 2010, Estimate: math.NaN()},
		{Country: "D", Year: 2010, Estimate: 10},
		{Country: "E", Year: 2010, Estimate: 5.555},
	}
	rows := Summarize(view)

	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.Country
	}
	assert.Equal(t, []string{"B", "D", "E", "A"}, got)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Mean, rows[i].Mean)
	}

	if diff := cmp.Diff(SummaryRow{Country: "A", Mean: 1.5, Max: 2, Min: 1, Count: 2}, rows[3],
		cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Error("Unexpected summary row:\n" + diff)
	}
}

func TestAnalyze_Notices(t *testing.T) {
	ds := mustLoad(t, plainCSV, ShapeNormalized)

	a := Analyze(ds, FilterState{Countries: []string{"India", "Nigeria"}, YearMin: 2010, YearMax: 2012})
	assert.Empty(t, a.Notices)
	assert.True(t, a.ShowErrorBars)
	assert.Len(t, a.View, 6)
	assert.Len(t, a.Preview, PreviewRows)
	assert.Equal(t, "India", a.Summary[0].Country)

	a = Analyze(ds, FilterState{YearMin: 2010, YearMax: 2012})
	require.Len(t, a.Notices, 1)
	assert.Equal(t, LevelInfo, a.Notices[0].Level)
	assert.Empty(t, a.Summary)

	noBounds := mustLoad(t, "Country,Year,Estimated Prevalence\nIndia,2010,300\n", ShapeNormalized)
	a = Analyze(noBounds, FilterState{Countries: []string{"India"}, YearMin: 2010, YearMax: 2010})
	assert.False(t, a.ShowErrorBars)
	require.Len(t, a.Notices, 1)
	assert.Contains(t, a.Notices[0].Text, "Uncertainty bounds")
	assert.Len(t, a.Summary, 1)

	noEstimate := mustLoad(t, "Country,Year\nIndia,2010\n", ShapeNormalized)
	a = Analyze(noEstimate, FilterState{Countries: []string{"India"}, YearMin: 2010, YearMax: 2010})
	assert.False(t, a.ShowEstimate)
	require.Len(t, a.Notices, 1)
	assert.Equal(t, LevelWarning, a.Notices[0].Level)
	assert.Nil(t, a.Summary)
}

func TestByCountry(t *testing.T) {
	order, groups := ByCountry([]Record{
		{Country: "B", Year: 2012},
		{Country: "A", Year: 2011},
		{Country: "B", Year: 2010},
	})
	assert.Equal(t, []string{"B", "A"}, order)
	assert.Equal(t, 2010, groups["B"][0].Year)
	assert.Equal(t, 2012, groups["B"][1].Year)
}

func TestISOCode(t *testing.T) {
	assert.Equal(t, "IND", ISOCode("India"))
	assert.Equal(t, "", ISOCode("Atlantis"))
}

func TestLoadFile_XLSX(t *testing.T) {
	f := xlsx.NewFile()
	rows := [][]interface{}{
		{"Country or territory name", "Region", "Year", "Estimated prevalence of TB (all forms)"},
		{"India", "SEA", 2010, 300},
		{"Nigeria", "AFR", 2010}, // trailing cell missing
	}
	for i, row := range rows {
		for j, v := range row {
			cell, err := xlsx.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	p := filepath.Join(t.TempDir(), "tb.xlsx")
	require.NoError(t, f.SaveAs(p))

	ds, err := LoadFile(p, ShapeRenamed)
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, "India", ds.Records[0].Country)
	assert.Equal(t, 2010, ds.Records[0].Year)
	assert.Equal(t, 300.0, ds.Records[0].Estimate)
	assert.True(t, math.IsNaN(ds.Records[1].Estimate))
	assert.True(t, ds.HasEstimate)
	assert.False(t, ds.HasBounds)
	assert.Equal(t, p, ds.Path)
}

func TestLoadFile_XLS(t *testing.T) {
	p := filepath.Join("testdata", "tb.xls")

	rows, err := ExtractRowsFromFile(p)
	require.NoError(t, err)
	want := [][]string{
		{"Country or territory name", "Region", "Year", "Estimated prevalence of TB (all forms)"},
		{"India", "SEA", "2010", "300"},
		{"Nigeria", "AFR", "2010", ""},
		{"Chad", "AFR", "2011", "152.5"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("ExtractRowsFromFile(%q) mismatch (-want +got):\n%s", p, diff)
	}

	ds, err := LoadFile(p, ShapeRenamed)
	require.NoError(t, err)
	assert.Equal(t, p, ds.Path)
	assert.True(t, ds.HasEstimate)
	assert.False(t, ds.HasBounds)

	require.Len(t, ds.Records, 3)
	assert.Equal(t, "India", ds.Records[0].Country)
	assert.Equal(t, 300.0, ds.Records[0].Estimate)
	assert.Equal(t, "Nigeria", ds.Records[1].Country)
	assert.True(t, math.IsNaN(ds.Records[1].Estimate))

	// The last row of the sheet is included.
	last := Record{Country: "Chad", Year: 2011, Estimate: 152.5, Low: math.NaN(), High: math.NaN()}
	if diff := cmp.Diff(last, ds.Records[2], cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("last record mismatch (-want +got):\n%s", diff)
	}
}
