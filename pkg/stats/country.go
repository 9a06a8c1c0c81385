package stats

import "github.com/biter777/countries"

// ISOCode returns the ISO 3166-1 alpha-3 code for a country name, or "" when
// the name is not recognized (territories, WHO-specific spellings).
func ISOCode(country string) string {
	c := countries.ByName(country)
	if c == countries.Unknown || !c.IsValid() {
		return ""
	}
	return c.Alpha3()
}
