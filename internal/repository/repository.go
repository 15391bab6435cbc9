// Package repository defines the repository contract: a typed facade
// over persistence that the engine treats as a black box. The admin HTTP
// surface and the relational schema behind any implementation are out of
// scope; this package only fixes the shape the orchestrator is
// written against.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/cacack/ancestry-research/internal/domain"
)

// ErrNotFound is returned by single-row lookups that find nothing.
var ErrNotFound = errors.New("repository: not found")

// JobPatch carries a partial update to a ResearchJob: nil fields are left
// unchanged.
type JobPatch struct {
	Status          *domain.JobStatus
	ProgressMessage *string
	ProgressCurrent *int
	ProgressTotal   *int
	ErrorMessage    *string
	LevelCounts     map[domain.ConfidenceLevel]int
}

// AncestorPatch carries a partial update to an Ancestor keyed by (job id,
// ascendancy number). Nil fields are left unchanged. Repository
// implementations must still run the result through domain.Ancestor.ApplyWrite
// so customer-data protection is enforced at the single choke point
// regardless of which implementation serves the call.
type AncestorPatch struct {
	GivenName           *string
	Surname             *string
	Gender              *domain.Gender
	BirthDate           *domain.PartialDate
	BirthPlace          *string
	DeathDate           *domain.PartialDate
	DeathPlace          *string
	ConfidenceLevel     *domain.ConfidenceLevel
	ConfidenceScore     *int
	EvidenceChain       []domain.EvidenceRecord
	AppendEvidence      []domain.EvidenceRecord
	SearchLogAppend     []domain.SearchLogEntry
	Sources             []string
	VerificationNotes   *string
	ExternalPersonID    *string
	FatherName          *string
	MotherName          *string
	MotherMaidenSurname *string
}

// SearchCandidate is one of the ranked inspection candidates the
// hypothesis builder persists
// for a target ascendancy number, capped to the top 15.
type SearchCandidate struct {
	ID               uuid.UUID
	JobID            string
	AscendancyNumber int
	Rank             int
	Surname          string
	Forenames        string
	BirthYear        int
	Quarter          int
	District         string
	Volume           string
	Page             string
	Score            int
}

// Repository is the persistence contract the engine is written against.
// All operations are typed
// and atomic per the operation they name; implementations must not expose
// partial writes across a single call.
type Repository interface {
	CreateResearchJob(ctx context.Context, job *domain.ResearchJob) error
	UpdateResearchJob(ctx context.Context, jobID string, patch JobPatch) error
	UpdateJobProgress(ctx context.Context, jobID, message string, current, total int) error
	GetResearchJob(ctx context.Context, jobID string) (*domain.ResearchJob, error)
	ListCompletedJobs(ctx context.Context) ([]*domain.ResearchJob, error)

	GetAncestorByAscNumber(ctx context.Context, jobID string, a int) (*domain.Ancestor, error)
	GetAncestors(ctx context.Context, jobID string) ([]*domain.Ancestor, error)
	GetAncestorByID(ctx context.Context, id uuid.UUID) (*domain.Ancestor, error)
	AddAncestor(ctx context.Context, row *domain.Ancestor) error
	UpdateAncestorByAscNumber(ctx context.Context, jobID string, a int, patch AncestorPatch) error
	DeleteDescendantAncestors(ctx context.Context, jobID string, a int) ([]uuid.UUID, error)

	AddSearchCandidate(ctx context.Context, row SearchCandidate) error
	DeleteSearchCandidates(ctx context.Context, jobID string) error
	GetSearchCandidates(ctx context.Context, jobID string, a int) ([]SearchCandidate, error)

	GetRejectedFsIDs(ctx context.Context, jobID string) (map[string]bool, error)

	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}
