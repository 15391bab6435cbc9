// Package research implements the hypothesis builder, household
// resolver, parent-couple finder, cross-check & reinforcement, and
// confidence scorer that together turn a target ascendancy number into a
// finalized, evidence-weighted Ancestor identification.
package research

import (
	"context"
	"sort"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/obs"
	"github.com/cacack/ancestry-research/internal/sources"
)

// PersonInfo is everything the hypothesis builder needs about a target
// ascendant.
type PersonInfo struct {
	GivenName           string
	Surname             string
	BirthYear           int
	BirthPlace          string
	MotherMaidenSurname string
	FatherSurname       string
}

// BuildHypotheses is the hypothesis builder, Step 1 of the research
// pipeline. It returns an empty slice, never an error, when no birth year
// is known or no primary-index source is available; the orchestrator falls
// back to a tree lead in that case.
func BuildHypotheses(ctx context.Context, primary sources.Adapter, info PersonInfo) []*domain.Hypothesis {
	if primary == nil || info.BirthYear == 0 {
		return nil
	}

	district := domain.ExtractDistrict(info.BirthPlace)

	entries := searchBirthWindow(ctx, primary, info.Surname, info.GivenName, info.BirthYear, district)
	if len(entries) < 3 && district != "" {
		entries = append(entries, searchBirthWindow(ctx, primary, info.Surname, info.GivenName, info.BirthYear, "")...)
	}

	variantCoords := make(map[[2]string]bool)
	if len(entries) == 0 {
		for _, variant := range firstN(domain.SurnameVariants(info.Surname), 2) {
			hits := searchBirthWindow(ctx, primary, variant, info.GivenName, info.BirthYear, district)
			for _, hit := range hits {
				variantCoords[[2]string{hit.Volume, hit.Page}] = true
			}
			entries = append(entries, hits...)
		}
	}

	entries = dedupBirthEntries(entries)

	hyps := make([]*domain.Hypothesis, 0, len(entries))
	for _, e := range entries {
		h := domain.NewHypothesis(e.Surname, e.Forenames, e.Year, e.Quarter, e.District)
		h.Volume = e.Volume
		h.Page = e.Page
		h.MotherMaidenSurname = e.MotherMaidenSurname
		h.Score = scoreBirthCandidate(info, e)
		h.FromSurnameVariant = variantCoords[[2]string{e.Volume, e.Page}]
		obs.HypothesisScore.Observe(float64(h.Score))
		hyps = append(hyps, h)
	}

	sort.SliceStable(hyps, func(i, j int) bool { return hyps[i].Score > hyps[j].Score })
	return hyps
}

func searchBirthWindow(ctx context.Context, primary sources.Adapter, surname, given string, birthYear int, district string) []sources.BirthEntry {
	entries, err := primary.SearchBirths(ctx, surname, given, birthYear-5, birthYear+5, district)
	if err != nil {
		return nil
	}
	return entries
}

func firstN(ss []string, n int) []string {
	if len(ss) <= n {
		return ss
	}
	return ss[:n]
}

func dedupBirthEntries(entries []sources.BirthEntry) []sources.BirthEntry {
	seen := make(map[[2]string]bool)
	out := make([]sources.BirthEntry, 0, len(entries))
	for _, e := range entries {
		if e.Volume != "" && e.Page != "" {
			key := [2]string{e.Volume, e.Page}
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, e)
	}
	return out
}

// scoreBirthCandidate scores one birth-index hit: name similarity,
// year proximity, district match, and mother-maiden-surname match.
func scoreBirthCandidate(info PersonInfo, e sources.BirthEntry) int {
	score := 0

	if domain.NamesSimilar(info.GivenName, e.Forenames) {
		score += 20
	} else if hasSharedPrefix(info.GivenName, e.Forenames) {
		score += 15
	}

	if info.BirthYear != 0 {
		diff := abs(info.BirthYear - e.Year)
		switch {
		case diff == 0:
			score += 20
		case diff == 1:
			score += 15
		case diff <= 3:
			score += 10
		case diff <= 5:
			score += 5
		}
	}

	wantDistrict := domain.ExtractDistrict(info.BirthPlace)
	switch {
	case wantDistrict != "" && equalFold(wantDistrict, e.District):
		score += 15
	case wantDistrict != "" && containsFold(wantDistrict, e.District):
		score += 10
	case wantDistrict != "" && domain.DistrictsSimilar(wantDistrict, e.District):
		score += 8
	}

	if info.MotherMaidenSurname != "" && e.MotherMaidenSurname != "" {
		switch {
		case equalFold(info.MotherMaidenSurname, e.MotherMaidenSurname):
			score += 30
		case containsFold(info.MotherMaidenSurname, e.MotherMaidenSurname):
			score += 15
		}
	}

	return score
}
