package stats

import (
	"math"
	"sort"
	"time"
)

// Canonical column keys every loader shape resolves to.
const (
	ColCountry  = "country"
	ColYear     = "year"
	ColEstimate = "estimated_prevalence"
	ColLow      = "estimated_prevalence_low"
	ColHigh     = "estimated_prevalence_high"
)

// Record is one country/year row of the TB burden table.
// Missing numeric cells are NaN.
type Record struct {
	Country  string
	Year     int
	Estimate float64
	Low      float64
	High     float64
}

// HasEstimate reports whether the row carries a usable point estimate.
func (r Record) HasEstimate() bool {
	return !math.IsNaN(r.Estimate)
}

// HasBounds reports whether both uncertainty bounds are present.
func (r Record) HasBounds() bool {
	return !math.IsNaN(r.Low) && !math.IsNaN(r.High)
}

// Dataset is the loaded, normalized table. It is never mutated after load.
type Dataset struct {
	Path        string
	Shape       Shape
	Columns     []string
	Records     []Record
	HasEstimate bool
	HasBounds   bool
	Loaded      time.Time
}

// Countries returns the distinct country names in alphabetical order.
func (ds *Dataset) Countries() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range ds.Records {
		if !seen[r.Country] {
			seen[r.Country] = true
			names = append(names, r.Country)
		}
	}
	sort.Strings(names)
	return names
}

// HasCountry reports whether name appears in the dataset.
func (ds *Dataset) HasCountry(name string) bool {
	for _, r := range ds.Records {
		if r.Country == name {
			return true
		}
	}
	return false
}

// YearBounds returns the smallest and largest observed year.
// Both are zero for an empty dataset.
func (ds *Dataset) YearBounds() (min, max int) {
	for i, r := range ds.Records {
		if i == 0 || r.Year < min {
			min = r.Year
		}
		if i == 0 || r.Year > max {
			max = r.Year
		}
	}
	return min, max
}

// SummaryRow holds the per-country statistics of a filtered view.
type SummaryRow struct {
	Country string
	Mean    float64
	Max     float64
	Min     float64
	Count   int
}
