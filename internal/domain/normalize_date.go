package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// PartialDate is a research date with flexible precision: a year is always
// required once parsed, month and day are optional. Unlike GenDate (which
// models full GEDCOM date grammar for the person/family hand-off), a
// PartialDate models only what the record sources and hypothesis-building
// steps need: a year to search on, with month/day kept when the original
// record supplied them.
type PartialDate struct {
	Raw   string
	Year  *int
	Month *int
	Day   *int
}

var (
	datePrefixModifier = regexp.MustCompile(`(?i)^(abt\.?|about|circa|c\.|~)\s*`)
	yearOnlyPattern    = regexp.MustCompile(`^\d{4}$`)
	dottedDatePattern  = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{2}|\d{4})$`)
	dayMonthYrPattern  = regexp.MustCompile(`(?i)^(\d{1,2})\s+([A-Za-z]+)\s+(\d{4})$`)
	monthYearPattern   = regexp.MustCompile(`(?i)^([A-Za-z]+)\s+(\d{4})$`)
)

var fullMonthNames = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
	"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
}

var abbrevMonthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParsePartialDate parses a subject-input or record date string. Leading
// modifiers (abt, about, circa, c., ~) are stripped before parsing. Returns
// false when the string matches none of the accepted shapes.
func ParsePartialDate(s string) (PartialDate, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return PartialDate{}, false
	}
	body := strings.TrimSpace(datePrefixModifier.ReplaceAllString(raw, ""))
	if body == "" {
		return PartialDate{}, false
	}

	if yearOnlyPattern.MatchString(body) {
		y, _ := strconv.Atoi(body)
		return PartialDate{Raw: raw, Year: &y}, true
	}

	if m := dottedDatePattern.FindStringSubmatch(body); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, ok := pivotYear(m[3])
		if !ok || month < 1 || month > 12 || day < 1 || day > 31 {
			return PartialDate{}, false
		}
		return PartialDate{Raw: raw, Year: &year, Month: &month, Day: &day}, true
	}

	if m := dayMonthYrPattern.FindStringSubmatch(body); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		month, ok := monthByName(m[2])
		if !ok {
			return PartialDate{}, false
		}
		return PartialDate{Raw: raw, Year: &year, Month: &month, Day: &day}, true
	}

	if m := monthYearPattern.FindStringSubmatch(body); m != nil {
		year, _ := strconv.Atoi(m[2])
		month, ok := monthByName(m[1])
		if !ok {
			return PartialDate{}, false
		}
		return PartialDate{Raw: raw, Year: &year, Month: &month}, true
	}

	return PartialDate{}, false
}

func monthByName(name string) (int, bool) {
	lower := strings.ToLower(name)
	if m, ok := fullMonthNames[lower]; ok {
		return m, true
	}
	if m, ok := abbrevMonthNames[lower]; ok {
		return m, true
	}
	return 0, false
}

// pivotYear resolves a 2- or 4-digit year string using the two-digit pivot:
// values greater than 25 are 19xx, values 25 and under are 20xx.
func pivotYear(s string) (int, bool) {
	yy, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if len(s) == 4 {
		return yy, true
	}
	if yy > 25 {
		return 1900 + yy, true
	}
	return 2000 + yy, true
}

// YearOnly renders the year-only form external record sources require as
// query input.
func (d PartialDate) YearOnly() string {
	if d.Year == nil {
		return ""
	}
	return strconv.Itoa(*d.Year)
}

// String renders the canonical year-only form. Parsing this output again
// yields an equivalent year-only PartialDate (idempotent round-trip).
func (d PartialDate) String() string {
	return d.YearOnly()
}

// IsZero reports whether no year was parsed.
func (d PartialDate) IsZero() bool {
	return d.Year == nil
}
