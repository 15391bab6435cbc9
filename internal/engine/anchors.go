package engine

import (
	"context"
	"fmt"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/notes"
	"github.com/cacack/ancestry-research/internal/repository"
)

// PrePopulateAnchors performs Phase 0: writing Customer Data
// ancestors from the subject's own inputs before the engine itself starts.
// It is called by the job creator, not Run, but lives here so the contract
// it fixes stays next to the phases that depend on it.
func PrePopulateAnchors(ctx context.Context, repo repository.Repository, job *domain.ResearchJob) error {
	subject := job.Subject

	a1 := customerDataAncestor(job.ID, 1, subject.GivenName, subject.Surname, subject.BirthDate, subject.BirthPlace, subject.DeathDate, subject.DeathPlace)
	if err := repo.AddAncestor(ctx, a1); err != nil {
		return fmt.Errorf("engine: pre-populate A=1: %w", err)
	}

	if subject.FatherName != "" {
		given, surname := domain.ParseName(subject.FatherName)
		a2 := customerDataAncestor(job.ID, 2, given, surname, "", "", "", "")
		if err := repo.AddAncestor(ctx, a2); err != nil {
			return fmt.Errorf("engine: pre-populate A=2: %w", err)
		}
	}
	if subject.MotherName != "" {
		given, surname := domain.ParseName(subject.MotherName)
		a3 := customerDataAncestor(job.ID, 3, given, surname, "", "", "", "")
		if err := repo.AddAncestor(ctx, a3); err != nil {
			return fmt.Errorf("engine: pre-populate A=3: %w", err)
		}
	}

	if subject.Notes == "" {
		return nil
	}
	anchors := notes.ParseNotes(subject.Notes)
	for a, fact := range anchors {
		if !domain.IsAnchorSlot(a) || fact.GivenName == "" {
			continue
		}
		if existing, err := repo.GetAncestorByAscNumber(ctx, job.ID, a); err == nil && existing != nil {
			// Slot already holds a parent-name anchor; the notes can only
			// contribute the dates and place the name alone lacked.
			if err := enrichAnchorFromNotes(ctx, repo, existing, fact); err != nil {
				return fmt.Errorf("engine: enrich A=%d from notes: %w", a, err)
			}
			continue
		}
		row := customerDataAncestor(job.ID, a, fact.GivenName, fact.Surname, fact.BirthDate, fact.BirthPlace, fact.DeathDate, "")
		if err := repo.AddAncestor(ctx, row); err != nil {
			return fmt.Errorf("engine: pre-populate A=%d: %w", a, err)
		}
	}
	return nil
}

func enrichAnchorFromNotes(ctx context.Context, repo repository.Repository, existing *domain.Ancestor, fact domain.AnchorFact) error {
	patch := repository.AncestorPatch{}
	hasPatch := false
	if existing.BirthDate == nil {
		if d, ok := domain.ParsePartialDate(fact.BirthDate); ok {
			patch.BirthDate = &d
			hasPatch = true
		}
	}
	if existing.BirthPlace == "" && fact.BirthPlace != "" {
		patch.BirthPlace = &fact.BirthPlace
		hasPatch = true
	}
	if existing.DeathDate == nil {
		if d, ok := domain.ParsePartialDate(fact.DeathDate); ok {
			patch.DeathDate = &d
			hasPatch = true
		}
	}
	if !hasPatch {
		return nil
	}
	return repo.UpdateAncestorByAscNumber(ctx, existing.JobID, existing.AscendancyNumber, patch)
}

func customerDataAncestor(jobID string, a int, given, surname, birthDate, birthPlace, deathDate, deathPlace string) *domain.Ancestor {
	row := domain.NewAncestor(jobID, a)
	row.GivenName = given
	row.Surname = surname
	row.BirthPlace = birthPlace
	row.DeathPlace = deathPlace
	row.ConfidenceLevel = domain.LevelCustomerData
	row.ConfidenceScore = 100
	if d, ok := domain.ParsePartialDate(birthDate); ok {
		row.BirthDate = &d
	}
	if d, ok := domain.ParsePartialDate(deathDate); ok {
		row.DeathDate = &d
	}
	return row
}
