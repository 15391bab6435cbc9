package research

import (
	"context"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/sources"
)

// CoupleQuery is the derived input to the Parent-Couple Finder.
type CoupleQuery struct {
	ChildBirthYear      int
	District            string
	FatherSurname       string
	FatherGivenName     string // optional, from tree facts
	MotherMaidenSurname string
	MotherGivenName     string // optional, from tree facts
}

// FindParentCouple is Step 3 of the research pipeline: it
// searches marriage indices for the target's parents' union. Returns nil
// when no candidate reaches the acceptance threshold of 40.
func FindParentCouple(ctx context.Context, primary sources.Adapter, q CoupleQuery) *domain.EvidenceRecord {
	if primary == nil || q.ChildBirthYear == 0 {
		return nil
	}

	yearFrom := q.ChildBirthYear - 15
	yearTo := q.ChildBirthYear

	groomResults, _ := primary.SearchMarriages(ctx, q.FatherSurname, q.FatherGivenName, yearFrom, yearTo, q.District)
	best, bestScore := bestMarriageMatch(groomResults, q, true)

	if bestScore < 60 && q.MotherGivenName != "" {
		brideResults, _ := primary.SearchMarriages(ctx, q.MotherMaidenSurname, q.MotherGivenName, yearFrom, yearTo, q.District)
		if m, s := bestMarriageMatch(brideResults, q, false); s > bestScore {
			best, bestScore = m, s
		}
	}

	if bestScore < 40 {
		return nil
	}

	rec := domain.NewEvidenceRecord(domain.EvidenceMarriage, primary.Name(), domain.AspectParents, domain.AspectLocation)
	rec.Year = best.Year
	rec.Quarter = best.Quarter
	rec.District = best.District
	rec.Volume = best.Volume
	rec.Page = best.Page
	rec.Place = best.District
	rec.Details = best.GroomSurname + " x " + best.BrideSurname
	rec.GroomSurname = best.GroomSurname
	rec.BrideSurname = best.BrideSurname
	return &rec
}

func bestMarriageMatch(entries []sources.MarriageEntry, q CoupleQuery, byGroom bool) (sources.MarriageEntry, int) {
	var best sources.MarriageEntry
	bestScore := -1
	for _, e := range entries {
		score := scoreMarriageCandidate(e, q)
		if score > bestScore {
			bestScore = score
			best = e
		}
	}
	return best, bestScore
}

// scoreMarriageCandidate scores a marriage hit; the same weights apply
// whether the search ran by groom or by bride.
func scoreMarriageCandidate(e sources.MarriageEntry, q CoupleQuery) int {
	score := 0

	if equalFold(e.GroomSurname, q.FatherSurname) {
		score += 25
	}
	if equalFold(e.BrideSurname, q.MotherMaidenSurname) {
		score += 30
	}
	if q.FatherGivenName != "" && domain.NamesSimilar(e.GroomForenames, q.FatherGivenName) {
		score += 15
	}

	gap := q.ChildBirthYear - e.Year
	switch {
	case gap >= 0 && gap <= 5:
		score += 20
	case gap > 5 && gap <= 10:
		score += 15
	case gap > 10 && gap <= 15:
		score += 10
	}

	switch {
	case q.District != "" && equalFold(q.District, e.District):
		score += 10
	case q.District != "" && domain.DistrictsSimilar(q.District, e.District):
		score += 5
	}

	return score
}
