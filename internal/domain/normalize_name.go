package domain

import "strings"

const notFoundMarker = "(not found)"

// ParseName splits a free-text name into a given-name portion and a
// surname. The trailing "(not found)" marker left by failed source lookups
// is stripped first. The final whitespace-delimited token is taken as the
// surname; a single-token name yields only a given name.
func ParseName(raw string) (given, surname string) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, notFoundMarker))
	if s == "" {
		return "", ""
	}
	fields := strings.Fields(s)
	if len(fields) == 1 {
		return fields[0], ""
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
}

// diminutives maps a canonical given name to its common variants. Lookups
// are bidirectional: any two names in the same group are considered a match.
var diminutives = map[string][]string{
	"william":   {"bill", "will", "wm", "billy"},
	"elizabeth": {"betty", "bess", "liz", "beth", "eliza", "libby"},
	"robert":    {"bob", "rob", "bobby", "robbie"},
	"richard":   {"dick", "rick", "ricky", "rich"},
	"john":      {"jack", "jon", "johnny"},
	"margaret":  {"maggie", "meg", "peggy", "marge", "margie"},
	"catherine": {"kate", "katie", "cathy", "kathy", "katherine", "kitty"},
	"thomas":    {"tom", "tommy"},
	"charles":   {"charlie", "chuck", "chas"},
	"james":     {"jim", "jimmy", "jamie"},
	"mary":      {"molly", "polly", "minnie", "mamie"},
	"edward":    {"ed", "eddie", "ted", "teddy"},
	"henry":     {"harry", "hank"},
	"alexander": {"alex", "sandy", "xander"},
	"samuel":    {"sam", "sammy"},
	"frederick": {"fred", "freddie"},
	"george":    {"georgie"},
	"joseph":    {"joe", "joey"},
	"susan":     {"sue", "susie", "suzy"},
	"dorothy":   {"dot", "dottie", "dolly"},
}

var diminutiveGroup = func() map[string]string {
	groups := make(map[string]string)
	for canon, variants := range diminutives {
		groups[canon] = canon
		for _, v := range variants {
			groups[v] = canon
		}
	}
	return groups
}()

// NamesSimilar reports whether two given names are likely the same person's
// name: exact (case-insensitive) match, matching first tokens, a shared
// diminutive group, or substring containment (to catch middle names).
func NamesSimilar(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	aFields := strings.Fields(a)
	bFields := strings.Fields(b)
	if len(aFields) == 0 || len(bFields) == 0 {
		return false
	}
	if aFields[0] == bFields[0] {
		return true
	}
	if ga, ok := diminutiveGroup[aFields[0]]; ok {
		if gb, ok := diminutiveGroup[bFields[0]]; ok && ga == gb {
			return true
		}
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return false
}
