package domain

import "strings"

// SurnameVariants generates mechanical spelling variants of a surname so a
// source search can widen past the literal spelling on record. Variants
// shorter than 3 characters are dropped; duplicates (including the input
// itself) are never returned.
func SurnameVariants(surname string) []string {
	s := strings.ToLower(strings.TrimSpace(surname))
	if s == "" {
		return nil
	}

	seen := map[string]bool{s: true}
	var out []string
	add := func(v string) {
		if len(v) > 2 && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	switch {
	case strings.HasPrefix(s, "mac"):
		add("mc" + s[3:])
	case strings.HasPrefix(s, "mc"):
		add("mac" + s[2:])
	}

	if strings.HasSuffix(s, "e") {
		add(strings.TrimSuffix(s, "e"))
	} else {
		add(s + "e")
	}

	switch {
	case strings.HasSuffix(s, "son"):
		add(strings.TrimSuffix(s, "son") + "sen")
	case strings.HasSuffix(s, "sen"):
		add(strings.TrimSuffix(s, "sen") + "son")
	}

	switch {
	case strings.HasSuffix(s, "ey"):
		add(strings.TrimSuffix(s, "ey") + "y")
	case strings.HasSuffix(s, "y"):
		add(strings.TrimSuffix(s, "y") + "ey")
	}

	switch {
	case strings.Contains(s, "th"):
		add(strings.Replace(s, "th", "t", 1))
	case strings.Contains(s, "t"):
		add(strings.Replace(s, "t", "th", 1))
	}

	if strings.Contains(s, "ph") {
		add(strings.Replace(s, "ph", "f", 1))
	}

	switch {
	case strings.Contains(s, "oo"):
		add(strings.Replace(s, "oo", "ou", 1))
	case strings.Contains(s, "ou"):
		add(strings.Replace(s, "ou", "oo", 1))
	}

	return out
}
