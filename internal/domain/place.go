package domain

import "strings"

// Place is a parsed place string: the (town, county, country) triple the
// place classifier compares against its fixed county and country sets.
// Components the string did not resolve are empty.
type Place struct {
	Town    string `json:"town,omitempty"`
	County  string `json:"county,omitempty"`
	Country string `json:"country,omitempty"`
}

// ParsePlace splits a comma-separated place string into its triple. A bare
// two-letter US state code counts as a locating component only when it is
// the final token.
func ParsePlace(s string) Place {
	town, county, country := placeTriple(s)
	return Place{Town: town, County: county, Country: country}
}

// String rejoins the resolved components, coarsest last.
func (p Place) String() string {
	parts := make([]string, 0, 3)
	if p.Town != "" {
		parts = append(parts, p.Town)
	}
	if p.County != "" {
		parts = append(parts, p.County)
	}
	if p.Country != "" {
		parts = append(parts, p.Country)
	}
	return strings.Join(parts, ", ")
}

// IsEmpty reports whether no component resolved.
func (p Place) IsEmpty() bool {
	return p.Town == "" && p.County == "" && p.Country == ""
}

// Specificity reports how specific the triple is, from town-level down to
// no recognizable component.
func (p Place) Specificity() PlaceSpecificity {
	switch {
	case p.Town != "" && p.County != "" && p.Country != "":
		return SpecificityTown
	case p.County != "" && p.Country != "":
		return SpecificityCounty
	case p.Country != "":
		return SpecificityCountry
	case p.Town != "" || p.County != "":
		return SpecificityPartial
	default:
		return SpecificityNone
	}
}

// IsUK reports whether the triple resolves to a UK country or a UK county.
func (p Place) IsUK() bool {
	if p.Country != "" {
		return ukCountryNames[strings.ToLower(p.Country)]
	}
	return p.County != "" && ukCounties[strings.ToLower(p.County)]
}

// IsNonUK reports whether the triple resolves to a recognized country that
// is not a UK country. A string with no recognized country is neither UK
// nor non-UK.
func (p Place) IsNonUK() bool {
	if p.Country == "" {
		return false
	}
	return !ukCountryNames[strings.ToLower(p.Country)]
}
