package stats

import (
	"fmt"
	"strings"
)

// Shape selects how raw column headers are turned into canonical keys.
type Shape string

const (
	// ShapeNormalized lowercases every header, replaces spaces with
	// underscores and strips parentheses, then resolves known aliases.
	ShapeNormalized Shape = "normalized"

	// ShapeRenamed drops the code/region columns and renames a hand-picked
	// subset of WHO headers.
	ShapeRenamed Shape = "renamed"
)

// ParseShape converts a config/flag value into a Shape.
// An empty string selects ShapeRenamed.
func ParseShape(s string) (Shape, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case "", ShapeRenamed:
		return ShapeRenamed, nil
	case ShapeNormalized:
		return ShapeNormalized, nil
	}
	return "", fmt.Errorf("unknown column shape %q", s)
}

// droppedColumns are removed by ShapeRenamed before renaming.
var droppedColumns = []string{
	"ISO 2-character country/territory code",
	"ISO numeric country/territory code",
	"ISO 3-character country/territory code",
	"Region",
	"Method to derive TBHIV estimates",
}

// renamedColumns is the explicit rename map used by ShapeRenamed.
var renamedColumns = map[string]string{
	"Country or territory name":                          ColCountry,
	"Year":                                               ColYear,
	"Estimated prevalence of TB (all forms)":             ColEstimate,
	"Estimated prevalence of TB (all forms), low bound":  ColLow,
	"Estimated prevalence of TB (all forms), high bound": ColHigh,
}

// normalizedAliases maps normalized WHO headers onto canonical keys.
var normalizedAliases = map[string]string{
	"country_or_territory_name":                        ColCountry,
	"estimated_prevalence_of_tb":                       ColEstimate,
	"estimated_prevalence_of_tb_all_forms":             ColEstimate,
	"estimated_prevalence_of_tblower_bound":            ColLow,
	"estimated_prevalence_of_tb_all_forms,_low_bound":  ColLow,
	"estimated_prevalence_of_tbupper_bound":            ColHigh,
	"estimated_prevalence_of_tb_all_forms,_high_bound": ColHigh,
}

// NormalizeColumnName turns "Estimated prevalence of TB (all forms)" into
// "estimated_prevalence_of_tb_all_forms".
func NormalizeColumnName(s string) string {
	s = cleanHeader(s)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	return s
}

func cleanHeader(s string) string {
	return strings.TrimSpace(strings.TrimLeft(s, "\ufeff")) // sigh
}

// columnPlan describes what to do with each raw header for a shape.
type columnPlan struct {
	drop   []string
	rename map[string]string // raw -> final
}

// planColumns computes the drop list and rename map for headers.
// Final names are kept unique: a later header that would collide with an
// earlier one keeps a numeric suffix.
func planColumns(headers []string, shape Shape) columnPlan {
	plan := columnPlan{rename: make(map[string]string)}
	used := make(map[string]bool)

	dropSet := make(map[string]bool)
	if shape == ShapeRenamed {
		for _, d := range droppedColumns {
			dropSet[d] = true
		}
	}

	for _, h := range headers {
		if dropSet[cleanHeader(h)] {
			plan.drop = append(plan.drop, h)
			continue
		}

		var name string
		switch shape {
		case ShapeNormalized:
			name = NormalizeColumnName(h)
			if alias, ok := normalizedAliases[name]; ok {
				name = alias
			}
		default:
			name = cleanHeader(h)
			if renamed, ok := renamedColumns[name]; ok {
				name = renamed
			}
		}

		final := name
		for i := 2; used[final]; i++ {
			final = fmt.Sprintf("%s_%d", name, i)
		}
		used[final] = true
		plan.rename[h] = final
	}
	return plan
}
