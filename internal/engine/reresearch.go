package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/repository"
)

// ErrCannotReResearchSubject is returned for an attempt to re-research A=1,
// the subject itself, which is never allowed.
var ErrCannotReResearchSubject = errors.New("engine: cannot re-research the subject (A=1)")

// ReResearch deletes A and every descendant slot in the
// ascendancy tree, then re-runs Phases 1-3 over the job so the deleted
// subtree is rebuilt. Customer-data anchors inside that subtree are read
// before the delete and written back unchanged after it, so they survive.
func (e *Engine) ReResearch(ctx context.Context, jobID string, a int) error {
	if a == 1 {
		return ErrCannotReResearchSubject
	}

	existing, err := e.Repo.GetAncestors(ctx, jobID)
	if err != nil {
		return fmt.Errorf("engine: load ancestors: %w", err)
	}
	var anchors []*domain.Ancestor
	for _, anc := range existing {
		if anc.ConfidenceLevel == domain.LevelCustomerData && domain.IsDescendantSlot(a, anc.AscendancyNumber) {
			anchors = append(anchors, anc)
		}
	}
	if _, err := e.Repo.DeleteDescendantAncestors(ctx, jobID, a); err != nil {
		return fmt.Errorf("engine: delete descendants of A=%d: %w", a, err)
	}
	for _, anc := range anchors {
		if err := e.Repo.AddAncestor(ctx, anc); err != nil {
			return fmt.Errorf("engine: restore anchor A=%d: %w", anc.AscendancyNumber, err)
		}
	}

	job, err := e.Repo.GetResearchJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("engine: load job: %w", err)
	}
	job.BeginReResearch()
	status := job.Status
	message := job.ProgressMessage
	current := job.ProgressCurrent
	if err := e.Repo.UpdateResearchJob(ctx, jobID, repository.JobPatch{
		Status:          &status,
		ProgressMessage: &message,
		ProgressCurrent: &current,
	}); err != nil {
		return fmt.Errorf("engine: begin re-research: %w", err)
	}

	return e.Run(ctx, jobID)
}

// CreateJob persists a new research job and pre-populates its Phase 0
// anchors; it does not run the engine itself, leaving the caller (an HTTP
// handler or CLI command) to schedule Run as its own unit of work.
func (e *Engine) CreateJob(ctx context.Context, job *domain.ResearchJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("engine: invalid job: %w", err)
	}
	if err := e.Repo.CreateResearchJob(ctx, job); err != nil {
		return fmt.Errorf("engine: create job: %w", err)
	}
	return PrePopulateAnchors(ctx, e.Repo, job)
}
