package research

import "strings"

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func equalFold(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func containsFold(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

// hasSharedPrefix reports whether two given names share at least a
// three-letter prefix, the "prefix" tier between no-match and NamesSimilar.
func hasSharedPrefix(a, b string) bool {
	fa := strings.Fields(strings.ToLower(strings.TrimSpace(a)))
	fb := strings.Fields(strings.ToLower(strings.TrimSpace(b)))
	if len(fa) == 0 || len(fb) == 0 {
		return false
	}
	first, second := fa[0], fb[0]
	n := 3
	if len(first) < n || len(second) < n {
		return false
	}
	return first[:n] == second[:n]
}

// prefixMatch reports whether two surnames share a 3-letter prefix, used by
// the mother-maiden-surname prefix scoring tier of the household resolver.
func prefixMatch(a, b string, n int) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if len(a) < n || len(b) < n {
		return false
	}
	return a[:n] == b[:n]
}
