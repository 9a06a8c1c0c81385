package stats

import (
	"math"
	"sort"
)

// Summarize groups view by country and computes the mean, max and min of the
// prevalence estimate, rounded to two decimals. Rows without an estimate are
// ignored, so a country with no usable rows is absent from the result.
// Rows are sorted by mean, highest first; equal means sort by country.
func Summarize(view []Record) []SummaryRow {
	type acc struct {
		sum, max, min float64
		n             int
	}

	var order []string
	groups := make(map[string]*acc)
	for _, r := range view {
		if !r.HasEstimate() {
			continue
		}
		a, ok := groups[r.Country]
		if !ok {
			a = &acc{max: r.Estimate, min: r.Estimate}
			groups[r.Country] = a
			order = append(order, r.Country)
		}
		a.sum += r.Estimate
		a.max = math.Max(a.max, r.Estimate)
		a.min = math.Min(a.min, r.Estimate)
		a.n++
	}

	rows := make([]SummaryRow, 0, len(order))
	for _, c := range order {
		a := groups[c]
		rows = append(rows, SummaryRow{
			Country: c,
			Mean:    Round2(a.sum / float64(a.n)),
			Max:     Round2(a.max),
			Min:     Round2(a.min),
			Count:   a.n,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Mean != rows[j].Mean {
			return rows[i].Mean > rows[j].Mean
		}
		return rows[i].Country < rows[j].Country
	})
	return rows
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
