// Package engine implements the research orchestrator: the job state
// machine and the three phases that turn pre-populated customer anchors
// into a fully traversed, evidence-scored ascendancy tree.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/obs"
	"github.com/cacack/ancestry-research/internal/repository"
	"github.com/cacack/ancestry-research/internal/sources"
	"github.com/cacack/ancestry-research/internal/sources/queue"
)

// ErrJobCancelled is the explicit cancellation reason the orchestrator
// records when it stops at a suspension point because the caller's context
// was cancelled mid-job. Partial writes already made to the repository are
// left in place.
var ErrJobCancelled = errors.New("engine: job cancelled")

// checkCancelled is consulted between phases and at the top of each
// Phase 1 anchor, Phase 2 couple pair and Phase 3 target; the adapter
// calls, repository writes and progress updates inside one such step run
// to completion without a check. It never blocks; it only observes
// whether ctx is already done.
func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrJobCancelled, ctx.Err())
	default:
		return nil
	}
}

// Engine drives one research job's phases against a registry of external
// sources and a repository. It holds no per-job state between Run calls;
// everything it needs travels through the job id and the repository.
type Engine struct {
	Repo     repository.Repository
	Registry *sources.Registry
	Logger   *log.Logger
	// Notifier is the optional Kafka finalized-ancestor fan-out (nil
	// disables it entirely). Never consulted for correctness.
	Notifier *queue.Notifier
}

// New builds an Engine. A nil logger falls back to the standard logger.
func New(repo repository.Repository, registry *sources.Registry, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{Repo: repo, Registry: registry, Logger: logger}
}

// Run executes Phases 1-3 for a pending or re-researching job, transitioning
// it to completed or failed. Phase 0 (anchor pre-population) is assumed
// already done by the caller via PrePopulateAnchors.
func (e *Engine) Run(ctx context.Context, jobID string) error {
	job, err := e.Repo.GetResearchJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("engine: load job: %w", err)
	}

	running := domain.JobRunning
	if err := e.Repo.UpdateResearchJob(ctx, jobID, repository.JobPatch{Status: &running}); err != nil {
		return fmt.Errorf("engine: mark running: %w", err)
	}

	total := 1<<(uint(job.Generations)+1) - 1
	prog := &progress{total: total}
	prog.report(ctx, e.Repo, jobID, "enriching anchors")

	if err := e.runPhases(ctx, job, prog); err != nil {
		msg := err.Error()
		failed := domain.JobFailed
		_ = e.Repo.UpdateResearchJob(ctx, jobID, repository.JobPatch{Status: &failed, ErrorMessage: &msg})
		e.Logger.Printf("research job %s failed: %v", jobID, err)
		obs.JobsCompletedTotal.WithLabelValues(string(domain.JobFailed)).Inc()
		return nil
	}

	completed := domain.JobCompleted
	err = e.Repo.UpdateResearchJob(ctx, jobID, repository.JobPatch{
		Status:      &completed,
		LevelCounts: e.levelCounts(ctx, jobID),
	})
	if err == nil {
		obs.JobsCompletedTotal.WithLabelValues(string(domain.JobCompleted)).Inc()
	}
	return err
}

// levelCounts tallies how many stored ancestors landed at each confidence
// level, the terminal summary recorded when the queue drains.
func (e *Engine) levelCounts(ctx context.Context, jobID string) map[domain.ConfidenceLevel]int {
	ancestors, err := e.Repo.GetAncestors(ctx, jobID)
	if err != nil {
		return nil
	}
	counts := make(map[domain.ConfidenceLevel]int, len(ancestors))
	for _, a := range ancestors {
		counts[a.ConfidenceLevel]++
	}
	for level, n := range counts {
		obs.AncestorsByLevel.WithLabelValues(jobID, string(level)).Set(float64(n))
	}
	return counts
}

func (e *Engine) runPhases(ctx context.Context, job *domain.ResearchJob, prog *progress) error {
	if err := e.phase1EnrichAnchors(ctx, job, prog); err != nil {
		return err
	}
	if err := checkCancelled(ctx); err != nil {
		return err
	}

	brideMaiden, err := e.phase2CoupleMarriages(ctx, job, prog)
	if err != nil {
		return err
	}
	if err := checkCancelled(ctx); err != nil {
		return err
	}

	return e.phase3Expand(ctx, job, brideMaiden, prog)
}

// progress tracks the running step count reported to pollers.
type progress struct {
	total   int
	current int
}

func (p *progress) report(ctx context.Context, repo repository.Repository, jobID, message string) {
	p.current++
	_ = repo.UpdateJobProgress(ctx, jobID, message, p.current, p.total)
}
