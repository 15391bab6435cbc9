package research

import (
	"context"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/sources"
)

// ReinforcementInput gathers what Step 5 needs to look for siblings, a
// death confirmation, and a second census.
type ReinforcementInput struct {
	GivenName           string
	Surname             string
	MotherMaidenSurname string
	District            string
	BirthYear           int
	BirthQuarter        int
	DeathYear           int // 0 if unknown
	ExistingCensusYears []int
	TreePersonID        string
}

// FindSiblingBirth implements the sibling-birth reinforcement: same
// mother-maiden surname, same district, a birth-year window of ±8, and a
// different (year, forenames) than the target itself. Returns the first
// match as a sibling_birth evidence record.
func FindSiblingBirth(ctx context.Context, primary sources.Adapter, in ReinforcementInput) *domain.EvidenceRecord {
	if primary == nil || in.MotherMaidenSurname == "" || in.BirthYear == 0 {
		return nil
	}

	entries, err := primary.SearchBirths(ctx, in.Surname, "", in.BirthYear-8, in.BirthYear+8, in.District)
	if err != nil {
		return nil
	}

	for _, e := range entries {
		if !equalFold(e.MotherMaidenSurname, in.MotherMaidenSurname) {
			continue
		}
		if !equalFold(e.District, in.District) {
			continue
		}
		if e.Year == in.BirthYear && equalFold(e.Forenames, in.GivenName) {
			continue // same person, not a sibling
		}
		rec := domain.NewEvidenceRecord(domain.EvidenceSiblingBirth, primary.Name(), domain.AspectParents)
		rec.Year = e.Year
		rec.Quarter = e.Quarter
		rec.District = e.District
		rec.Volume = e.Volume
		rec.Page = e.Page
		rec.Details = e.Forenames + " " + e.Surname
		return &rec
	}
	return nil
}

// ConfirmDeathReinforcement implements the death-confirmation
// reinforcement: only attempted when tree facts supplied a death year.
func ConfirmDeathReinforcement(ctx context.Context, confirmer sources.Adapter, in ReinforcementInput) *domain.EvidenceRecord {
	if confirmer == nil || in.DeathYear == 0 {
		return nil
	}
	entry, err := confirmer.ConfirmDeath(ctx, in.GivenName, in.Surname, in.DeathYear)
	if err != nil || entry == nil {
		return nil
	}
	rec := domain.NewEvidenceRecord(domain.EvidenceDeath, confirmer.Name(), domain.AspectIdentity)
	rec.Year = entry.Year
	rec.District = entry.District
	rec.Details = entry.Forenames + " " + entry.Surname
	return &rec
}

// FindSecondCensus implements the second-census reinforcement: a census
// from tree facts in a decade more than 8 years from any existing census
// evidence.
func FindSecondCensus(ctx context.Context, treeSource sources.Adapter, in ReinforcementInput) *domain.EvidenceRecord {
	if treeSource == nil || in.TreePersonID == "" {
		return nil
	}
	facts, err := treeSource.ExtractFacts(ctx, in.TreePersonID)
	if err != nil || facts == nil {
		return nil
	}

	for _, census := range facts.Census {
		fresh := true
		for _, existing := range in.ExistingCensusYears {
			if abs(census.Year-existing) <= 8 {
				fresh = false
				break
			}
		}
		if fresh {
			rec := domain.NewEvidenceRecord(domain.EvidenceCensus, treeSource.Name(), domain.AspectLocation)
			rec.Year = census.Year
			rec.Place = census.Place
			rec.Weight = 10 // reinforcement tier, distinct from the 15 child-window hit
			return &rec
		}
	}
	return nil
}
