package stats

import "sort"

const (
	// DefaultCountry is preselected when the dataset contains it.
	DefaultCountry = "India"

	// DefaultCountryCount is how many countries are preselected otherwise.
	DefaultCountryCount = 3
)

// FilterState is the user's current selection. Year bounds are inclusive.
type FilterState struct {
	Countries []string
	YearMin   int
	YearMax   int
}

// DefaultFilterState selects the default countries over the full year range.
func DefaultFilterState(ds *Dataset, preferred string, n int) FilterState {
	lo, hi := ds.YearBounds()
	return FilterState{
		Countries: DefaultCountries(ds, preferred, n),
		YearMin:   lo,
		YearMax:   hi,
	}
}

// DefaultCountries returns [preferred] when the dataset has it, otherwise the
// first n countries in alphabetical order.
func DefaultCountries(ds *Dataset, preferred string, n int) []string {
	if preferred != "" && ds.HasCountry(preferred) {
		return []string{preferred}
	}
	all := ds.Countries()
	if n < len(all) {
		all = all[:n]
	}
	return all
}

// Clamp returns a copy of s that satisfies the dataset invariants: the year
// range lies within the observed years (and is ordered), and every selected
// country exists. Selection order is preserved; duplicates are removed.
func (s FilterState) Clamp(ds *Dataset) FilterState {
	lo, hi := ds.YearBounds()

	out := FilterState{YearMin: s.YearMin, YearMax: s.YearMax}
	if out.YearMin > out.YearMax {
		out.YearMin, out.YearMax = out.YearMax, out.YearMin
	}
	out.YearMin = clampInt(out.YearMin, lo, hi)
	out.YearMax = clampInt(out.YearMax, lo, hi)

	known := make(map[string]bool)
	for _, c := range ds.Countries() {
		known[c] = true
	}
	seen := make(map[string]bool)
	for _, c := range s.Countries {
		if known[c] && !seen[c] {
			seen[c] = true
			out.Countries = append(out.Countries, c)
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Filter returns the records whose year is within [YearMin, YearMax] and
// whose country is selected. The result is a new slice; records keeps its
// order. An empty selection matches nothing.
func Filter(records []Record, s FilterState) []Record {
	selected := make(map[string]bool, len(s.Countries))
	for _, c := range s.Countries {
		selected[c] = true
	}

	view := make([]Record, 0)
	for _, r := range records {
		if r.Year < s.YearMin || r.Year > s.YearMax {
			continue
		}
		if !selected[r.Country] {
			continue
		}
		view = append(view, r)
	}
	return view
}

// ByCountry splits view into per-country slices sorted by year.
// Country order follows first appearance in view.
func ByCountry(view []Record) (order []string, groups map[string][]Record) {
	groups = make(map[string][]Record)
	for _, r := range view {
		if _, ok := groups[r.Country]; !ok {
			order = append(order, r.Country)
		}
		groups[r.Country] = append(groups[r.Country], r)
	}
	for _, g := range groups {
		sort.SliceStable(g, func(i, j int) bool { return g[i].Year < g[j].Year })
	}
	return order, groups
}
