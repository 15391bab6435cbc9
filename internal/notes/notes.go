// Package notes implements the notes parser: extraction of anchor facts
// for ascendancy numbers 2-7 from a subject's free-text notes.
package notes

import (
	"regexp"
	"strings"

	"github.com/cacack/ancestry-research/internal/domain"
)

var (
	yearRangeRe = regexp.MustCompile(`\(\s*(\d{4})\s*-\s*(\d{4}|present|living)?\s*\)`)

	fatherRe = regexp.MustCompile(`(?i:father)\D{0,20}?([A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*)*)\s*\(\s*(\d{4})\s*-\s*(\d{4}|present|living)?\s*\)`)
	motherRe = regexp.MustCompile(`(?i:mother)\D{0,20}?([A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*)*)\s*\(\s*(\d{4})\s*-\s*(\d{4}|present|living)?\s*\)`)

	paternalGPRe    = regexp.MustCompile(`(?i)paternal\s+(?:gp|grandparents):\s*([A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*)*)\s*\(\s*(\d{4})\s*-\s*(\d{4}|present|living)?\s*\)(?:\s+and\s+([A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*)*)\s*\(\s*(\d{4})\s*-\s*(\d{4}|present|living)?\s*\))?`)
	maternalGPRe    = regexp.MustCompile(`(?i)maternal\s+(?:gp|grandparents):\s*([A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*)*)\s*\(\s*(\d{4})\s*-\s*(\d{4}|present|living)?\s*\)(?:\s+and\s+([A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*)*)\s*\(\s*(\d{4})\s*-\s*(\d{4}|present|living)?\s*\))?`)
	paternalFallback = regexp.MustCompile(`(?i)paternal\s+grandfather\s+was\s+([A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*)*)\s*\(\s*(\d{4})\s*-\s*(\d{4}|present|living)?\s*\)`)
	paternalGMFallback = regexp.MustCompile(`(?i)paternal\s+grandmother\s+was\s+([A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*)*)\s*\(\s*(\d{4})\s*-\s*(\d{4}|present|living)?\s*\)`)
	maternalFallback = regexp.MustCompile(`(?i)maternal\s+grandfather\s+was\s+([A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*)*)\s*\(\s*(\d{4})\s*-\s*(\d{4}|present|living)?\s*\)`)
	maternalGMFallback = regexp.MustCompile(`(?i)maternal\s+grandmother\s+was\s+([A-Z][\w.'-]*(?:\s+[A-Z][\w.'-]*)*)\s*\(\s*(\d{4})\s*-\s*(\d{4}|present|living)?\s*\)`)

	bornNearRe = regexp.MustCompile(`(?i)born\s+\(?([A-Za-z0-9 .,]+?)\)?[\s,.]`)
	fromInOfRe = regexp.MustCompile(`(?i)(?:from|in|of)\s+([A-Z][A-Za-z .,'-]+)`)
)

// ParseNotes extracts anchor facts from free-text notes. Rules apply in
// order; first match wins per ascendancy number.
func ParseNotes(freeText string) domain.NotesAnchorMap {
	out := make(domain.NotesAnchorMap)
	if strings.TrimSpace(freeText) == "" {
		return out
	}

	if m := fatherRe.FindStringSubmatch(freeText); m != nil {
		out[2] = factFromMatch(m[1], m[2], m[3])
	}
	if m := motherRe.FindStringSubmatch(freeText); m != nil {
		out[3] = factFromMatch(m[1], m[2], m[3])
	}

	applyGrandparentPair(out, paternalGPRe, paternalFallback, paternalGMFallback, freeText, 4, 5)
	applyGrandparentPair(out, maternalGPRe, maternalFallback, maternalGMFallback, freeText, 6, 7)

	fillBirthDateAndPlace(out, freeText)

	return out
}

func applyGrandparentPair(out domain.NotesAnchorMap, pairRe, fallbackA, fallbackB *regexp.Regexp, text string, slotA, slotB int) {
	if m := pairRe.FindStringSubmatch(text); m != nil {
		out[slotA] = factFromMatch(m[1], m[2], m[3])
		if m[4] != "" {
			out[slotB] = factFromMatch(m[4], m[5], m[6])
		}
		return
	}
	if m := fallbackA.FindStringSubmatch(text); m != nil {
		out[slotA] = factFromMatch(m[1], m[2], m[3])
	}
	if m := fallbackB.FindStringSubmatch(text); m != nil {
		out[slotB] = factFromMatch(m[1], m[2], m[3])
	}
}

func factFromMatch(name, birthYear, deathYear string) domain.AnchorFact {
	given, surname := domain.ParseName(strings.TrimSpace(name))
	fact := domain.AnchorFact{
		GivenName: given,
		Surname:   surname,
		BirthDate: birthYear,
	}
	deathYear = strings.ToLower(strings.TrimSpace(deathYear))
	if deathYear != "" && deathYear != "present" && deathYear != "living" {
		fact.DeathDate = deathYear
	}
	return fact
}

// fillBirthDateAndPlace applies rules 5 and 6: a generic "born (date)" and
// "from|in|of Place" fill any missing birth date/place on an anchor whose
// surname already appears nearby in the text.
func fillBirthDateAndPlace(out domain.NotesAnchorMap, text string) {
	for a, fact := range out {
		if fact.Surname == "" {
			continue
		}
		idx := strings.Index(text, fact.Surname)
		if idx < 0 {
			continue
		}
		window := windowAround(text, idx, 120)

		if fact.BirthDate == "" {
			if m := bornNearRe.FindStringSubmatch(window); m != nil {
				fact.BirthDate = strings.TrimSpace(m[1])
			}
		}
		if fact.BirthPlace == "" {
			if m := fromInOfRe.FindStringSubmatch(window); m != nil {
				fact.BirthPlace = domain.SanitizePlace(strings.TrimSpace(m[1]))
			}
		}
		out[a] = fact
	}
}

func windowAround(text string, idx, radius int) string {
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + radius
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
