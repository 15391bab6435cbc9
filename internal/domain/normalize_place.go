package domain

import (
	"regexp"
	"strings"
	"unicode"
)

// nonLatinGlosses maps known non-Latin spellings of countries and US states
// (as seen transliterated from Cyrillic/Mongolian source material) to their
// English equivalents. Extend as new source material surfaces new glosses.
var nonLatinGlosses = map[string]string{
	"Англия":      "England",
	"Шотландия":   "Scotland",
	"Уэльс":       "Wales",
	"Ирландия":    "Ireland",
	"Калифорния":  "California",
	"Нью-Йорк":    "New York",
	"Техас":       "Texas",
	"Америка":     "America",
	"Английская":  "English",
}

// oldEnglishCounties maps archaic county spellings to their modern form.
var oldEnglishCounties = map[string]string{
	"deorbyscir":      "Derbyshire",
	"eoforwicscir":    "Yorkshire",
	"defnascir":       "Devonshire",
	"sumorsaete":      "Somerset",
	"hamtunscir":      "Hampshire",
	"liccitfelda":     "Lichfield",
	"snotingahamscir": "Nottinghamshire",
}

var (
	multiCommaRe = regexp.MustCompile(`,\s*,+`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// SanitizePlace normalizes a raw place string: known non-Latin glosses are
// translated to English, residual non-Latin characters are stripped, Old
// English county spellings are modernized, and double commas/whitespace are
// collapsed. Applying it twice is a fixed point.
func SanitizePlace(raw string) string {
	s := raw
	for gloss, english := range nonLatinGlosses {
		s = strings.ReplaceAll(s, gloss, english)
	}
	s = stripNonLatin(s)
	for old, modern := range oldEnglishCounties {
		s = replaceFold(s, old, modern)
	}
	s = multiCommaRe.ReplaceAllString(s, ",")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(strings.Trim(s, ", "))
	return s
}

func stripNonLatin(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r <= unicode.MaxASCII || unicode.Is(unicode.Latin, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func replaceFold(s, old, replacement string) string {
	lower := strings.ToLower(s)
	lowerOld := strings.ToLower(old)
	idx := strings.Index(lower, lowerOld)
	if idx < 0 {
		return s
	}
	return s[:idx] + replacement + s[idx+len(old):]
}

// ukCounties is a fixed set of historic/ceremonial UK county names used by
// the place classifier.
var ukCounties = map[string]bool{
	"derbyshire": true, "yorkshire": true, "devonshire": true, "somerset": true,
	"hampshire": true, "nottinghamshire": true, "lancashire": true, "cheshire": true,
	"kent": true, "essex": true, "surrey": true, "sussex": true, "norfolk": true,
	"suffolk": true, "lincolnshire": true, "staffordshire": true, "warwickshire": true,
	"middlesex": true, "cornwall": true, "cumberland": true, "northumberland": true,
}

var ukCountryNames = map[string]bool{
	"england": true, "scotland": true, "wales": true, "northern ireland": true,
	"united kingdom": true, "uk": true, "great britain": true,
}

var knownCountries = map[string]bool{
	"england": true, "scotland": true, "wales": true, "northern ireland": true,
	"united kingdom": true, "uk": true, "great britain": true,
	"united states": true, "usa": true, "us": true, "america": true,
	"ireland": true, "canada": true, "australia": true,
}

var usStateCodes = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true, "CT": true,
	"DE": true, "FL": true, "GA": true, "HI": true, "ID": true, "IL": true, "IN": true,
	"IA": true, "KS": true, "KY": true, "LA": true, "ME": true, "MD": true, "MA": true,
	"MI": true, "MN": true, "MS": true, "MO": true, "MT": true, "NE": true, "NV": true,
	"NH": true, "NJ": true, "NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true, "WI": true,
	"WY": true,
}

// PlaceSpecificity enumerates how specific a place string is.
type PlaceSpecificity string

const (
	SpecificityTown    PlaceSpecificity = "town"
	SpecificityCounty  PlaceSpecificity = "county"
	SpecificityCountry PlaceSpecificity = "country"
	SpecificityPartial PlaceSpecificity = "partial"
	SpecificityNone    PlaceSpecificity = "none"
)

// placeTriple splits a comma-separated place string into (town, county,
// country) components using fixed county/country sets. A bare two-letter US
// state code only counts when it is the final token.
func placeTriple(place string) (town, county, country string) {
	var parts []string
	for _, p := range strings.Split(place, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", "", ""
	}

	last := parts[len(parts)-1]
	lowerLast := strings.ToLower(last)
	switch {
	case knownCountries[lowerLast]:
		country = last
		parts = parts[:len(parts)-1]
	case len(last) == 2 && usStateCodes[strings.ToUpper(last)]:
		country = "United States"
		county = strings.ToUpper(last)
		parts = parts[:len(parts)-1]
	}

	if county == "" && len(parts) > 0 {
		candidate := parts[len(parts)-1]
		if ukCounties[strings.ToLower(candidate)] {
			county = candidate
			parts = parts[:len(parts)-1]
		}
	}

	if len(parts) > 0 {
		town = strings.Join(parts, ", ")
	}
	return town, county, country
}

// ClassifyPlaceSpecificity returns how specific a place string is, from
// town-level down to no recognizable component. Reflexive and commutative
// on equal input strings.
func ClassifyPlaceSpecificity(place string) PlaceSpecificity {
	return ParsePlace(place).Specificity()
}

// IsUKPlace reports whether a place string resolves to a UK country or one
// of the fixed UK county set.
func IsUKPlace(place string) bool {
	return ParsePlace(place).IsUK()
}

// IsNonUKPlace reports whether a place string resolves to a recognized
// country that is not a UK country.
func IsNonUKPlace(place string) bool {
	return ParsePlace(place).IsNonUK()
}

// ExtractDistrict returns the first comma-separated token of a place
// string, the finest-grained component the engine has.
func ExtractDistrict(place string) string {
	parts := strings.SplitN(place, ",", 2)
	return strings.TrimSpace(parts[0])
}

// DistrictsSimilar reports whether two district names are likely the same
// place: exact match, substring containment, or a shared Soundex code.
func DistrictsSimilar(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return SoundexMatch(a, b)
}
