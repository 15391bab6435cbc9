package research

import (
	"context"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/sources"
)

// ResolveHousehold is Step 2 of the research pipeline: it attaches one
// probable tree-person candidate to a hypothesis. treeSource must offer
// person_search and tree_traversal; a nil treeSource is a no-op (the
// no-tree-source degraded mode).
func ResolveHousehold(ctx context.Context, treeSource sources.Adapter, h *domain.Hypothesis, rejected map[string]bool) {
	if treeSource == nil || h == nil {
		return
	}

	candidates, err := treeSource.SearchPerson(ctx, sources.PersonSearchQuery{
		GivenName: h.Forenames,
		Surname:   h.Surname,
		BirthDate: yearOnly(h.BirthYear),
		Count:     10,
	})
	if err != nil || len(candidates) == 0 {
		return
	}

	var best sources.PersonCandidate
	bestScore := -1
	var bestCensus bool

	for _, c := range candidates {
		if rejected != nil && rejected[c.PersonID] {
			continue
		}
		if domain.IsNonUKPlace(c.BirthPlace) && !domain.IsUKPlace(c.BirthPlace) {
			continue
		}

		score, hasCensus := scoreHouseholdCandidate(h, c, treeSource, ctx)
		if score > bestScore {
			bestScore = score
			best = c
			bestCensus = hasCensus
		}
	}

	if bestScore < 0 {
		h.Discard()
		return
	}

	switch {
	case bestScore >= 60:
		h.Promote(domain.HypothesisPrimary)
	case bestScore >= 30:
		h.Promote(domain.HypothesisAlternate)
	default:
		h.Discard()
		return
	}

	h.Score += bestScore
	h.AttachTree(domain.TreeFacts{
		PersonID:   best.PersonID,
		FatherName: best.FatherName,
		MotherName: best.MotherName,
		BirthPlace: best.BirthPlace,
		DeathDate:  best.DeathDate,
	})
	if bestCensus {
		h.AddEvidence(domain.NewEvidenceRecord(domain.EvidenceCensus, treeSource.Name(), domain.AspectIdentity, domain.AspectLocation))
	}
}

func scoreHouseholdCandidate(h *domain.Hypothesis, c sources.PersonCandidate, treeSource sources.Adapter, ctx context.Context) (score int, hasChildhoodCensus bool) {
	if domain.NamesSimilar(h.Forenames, c.GivenName) {
		score += 20
	}

	wantDistrict := h.District
	gotDistrict := domain.ExtractDistrict(c.BirthPlace)
	switch {
	case wantDistrict != "" && equalFold(wantDistrict, gotDistrict):
		score += 15
	case wantDistrict != "" && domain.DistrictsSimilar(wantDistrict, gotDistrict):
		score += 10
	}

	if cBirthYear, ok := parseLeadingYear(c.BirthDate); ok && h.BirthYear != 0 {
		diff := abs(h.BirthYear - cBirthYear)
		switch {
		case diff <= 1:
			score += 15
		case diff <= 2:
			score += 10
		case diff <= 3:
			score += 5
		}
	}

	if c.FatherName != "" {
		_, fatherSurname := domain.ParseName(c.FatherName)
		if equalFold(fatherSurname, h.Surname) {
			score += 15
		}
	}

	if c.MotherName != "" && h.MotherMaidenSurname != "" {
		_, motherSurname := domain.ParseName(c.MotherName)
		switch {
		case equalFold(motherSurname, h.MotherMaidenSurname):
			score += 25
		case prefixMatch(motherSurname, h.MotherMaidenSurname, 3):
			score += 10
		}
	}

	facts, err := treeSource.ExtractFacts(ctx, c.PersonID)
	if err == nil && facts != nil && h.BirthYear != 0 {
		for _, census := range facts.Census {
			age := census.Year - h.BirthYear
			if age >= 0 && age <= 15 {
				score += 10
				hasChildhoodCensus = true
				break
			}
		}
	}

	return score, hasChildhoodCensus
}

func yearOnly(y int) string {
	if y == 0 {
		return ""
	}
	return domain.PartialDate{Year: &y}.YearOnly()
}

func parseLeadingYear(s string) (int, bool) {
	d, ok := domain.ParsePartialDate(s)
	if !ok || d.Year == nil {
		return 0, false
	}
	return *d.Year, true
}
