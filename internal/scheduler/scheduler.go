// Package scheduler wraps the engine in a cron-driven periodic sweep: an
// optional operational wrapper around the synchronous Run path, outside
// the core engine itself, for re-researching ancestors stuck at Flagged.
package scheduler

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/engine"
	"github.com/cacack/ancestry-research/internal/repository"
)

// Sweeper periodically re-researches Flagged ancestors across completed
// jobs, giving a source that was unavailable or rate-limited during the
// original run a later chance to contribute evidence.
type Sweeper struct {
	Engine *engine.Engine
	Repo   repository.Repository
	Logger *log.Logger
	cron   *cron.Cron
}

// New builds a Sweeper. A nil logger falls back to the standard logger.
func New(e *engine.Engine, repo repository.Repository, logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{Engine: e, Repo: repo, Logger: logger}
}

// Start schedules the sweep on cronExpr (standard 5-field cron) and
// returns immediately; the sweep itself runs asynchronously on each tick.
func (s *Sweeper) Start(cronExpr string) error {
	c := cron.New()
	if _, err := c.AddFunc(cronExpr, s.runSweep); err != nil {
		return err
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop halts the scheduler, waiting for any in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}

func (s *Sweeper) runSweep() {
	ctx := context.Background()
	jobs, err := s.Repo.ListCompletedJobs(ctx)
	if err != nil {
		s.Logger.Printf("sweep: list completed jobs: %v", err)
		return
	}

	swept := 0
	for _, job := range jobs {
		ancestors, err := s.Repo.GetAncestors(ctx, job.ID)
		if err != nil {
			s.Logger.Printf("sweep: list ancestors for job %s: %v", job.ID, err)
			continue
		}
		for _, a := range ancestors {
			if a.ConfidenceLevel != domain.LevelFlagged || a.AscendancyNumber == 1 {
				continue
			}
			if err := s.Engine.ReResearch(ctx, job.ID, a.AscendancyNumber); err != nil {
				s.Logger.Printf("sweep: re-research job %s A=%d: %v", job.ID, a.AscendancyNumber, err)
				continue
			}
			swept++
		}
	}
	if swept > 0 {
		s.Logger.Printf("sweep: re-researched %d flagged ancestor(s)", swept)
	}
}
