package domain

import "strings"

// countryNames maps the ISO 3166-1 alpha-2 codes the app's user base
// actually sends to human-readable names for the last-resort geocoding
// attempt ("<place>, <country>").
var countryNames = map[string]string{
	"AE": "United Arab Emirates",
	"AU": "Australia",
	"BD": "Bangladesh",
	"CA": "Canada",
	"DE": "Germany",
	"FR": "France",
	"GB": "United Kingdom",
	"ID": "Indonesia",
	"IN": "India",
	"JP": "Japan",
	"LK": "Sri Lanka",
	"MY": "Malaysia",
	"NP": "Nepal",
	"SG": "Singapore",
	"TH": "Thailand",
	"US": "United States",
}

// CountryName resolves a country-hint code to a display name. An unknown
// code passes through as-is; an empty hint falls back to the configured
// default country's name.
func CountryName(code, fallbackCode string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = strings.ToUpper(strings.TrimSpace(fallbackCode))
	}
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}
