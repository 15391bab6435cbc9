package engine

import (
	"context"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/repository"
	"github.com/cacack/ancestry-research/internal/sources"
)

// phase1EnrichAnchors is Phase 1: for every customer-provided anchor,
// attempt a birth confirmation and a person-search tree lead without ever
// lowering the anchor's confidence.
func (e *Engine) phase1EnrichAnchors(ctx context.Context, job *domain.ResearchJob, prog *progress) error {
	for _, a := range append([]int{1}, domain.AnchorSlots...) {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		anc, err := e.Repo.GetAncestorByAscNumber(ctx, job.ID, a)
		if err != nil || anc == nil || anc.GivenName == "" {
			continue
		}
		prog.report(ctx, e.Repo, job.ID, "enriching anchor")

		patch := repository.AncestorPatch{}
		hasPatch := false

		if rec := e.confirmBirth(ctx, anc); rec != nil {
			patch.AppendEvidence = append(patch.AppendEvidence, *rec)
			hasPatch = true
		}
		if id := e.lookupTreeLead(ctx, anc); id != "" {
			patch.ExternalPersonID = &id
			hasPatch = true
		}

		if hasPatch {
			_ = e.Repo.UpdateAncestorByAscNumber(ctx, job.ID, a, patch)
		}
	}
	return nil
}

func (e *Engine) confirmBirth(ctx context.Context, anc *domain.Ancestor) *domain.EvidenceRecord {
	primary := e.Registry.PrimaryIndex()
	if primary == nil || anc.BirthDate == nil || anc.BirthDate.Year == nil {
		return nil
	}
	year := *anc.BirthDate.Year
	entries, err := primary.SearchBirths(ctx, anc.Surname, anc.GivenName, year-2, year+2, domain.ExtractDistrict(anc.BirthPlace))
	if err != nil {
		return nil
	}

	var match *sources.BirthEntry
	for i := range entries {
		if domain.NamesSimilar(anc.GivenName, entries[i].Forenames) {
			if match != nil {
				return nil // more than one plausible match: not a confirmation
			}
			match = &entries[i]
		}
	}
	if match == nil {
		return nil
	}

	rec := domain.NewEvidenceRecord(domain.EvidenceBirth, primary.Name(), domain.AspectIdentity)
	rec.Year = match.Year
	rec.Quarter = match.Quarter
	rec.District = match.District
	rec.Volume = match.Volume
	rec.Page = match.Page
	return &rec
}

func (e *Engine) lookupTreeLead(ctx context.Context, anc *domain.Ancestor) string {
	tree := e.Registry.TreeSource()
	if tree == nil {
		return ""
	}
	candidates, err := tree.SearchPerson(ctx, sources.PersonSearchQuery{
		GivenName: anc.GivenName,
		Surname:   anc.Surname,
		BirthDate: yearOnlyOf(anc.BirthDate),
		Count:     5,
	})
	if err != nil || len(candidates) != 1 {
		return ""
	}
	return candidates[0].PersonID
}

func yearOnlyOf(d *domain.PartialDate) string {
	if d == nil {
		return ""
	}
	return d.YearOnly()
}
