// Package memory is an in-memory implementation of repository.Repository,
// used as the default and by engine tests: a mutex-guarded map store with
// defensive copies on every read and write.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/repository"
)

// Store is an in-memory Repository.
type Store struct {
	mu         sync.RWMutex
	jobs       map[string]*domain.ResearchJob
	ancestors  map[string]map[int]*domain.Ancestor // jobID -> ascNumber -> ancestor
	byID       map[uuid.UUID]string                // ancestor id -> jobID, for GetAncestorByID
	candidates map[string]map[int][]repository.SearchCandidate
	rejected   map[string]map[string]bool
	settings   map[string]string
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		jobs:       make(map[string]*domain.ResearchJob),
		ancestors:  make(map[string]map[int]*domain.Ancestor),
		byID:       make(map[uuid.UUID]string),
		candidates: make(map[string]map[int][]repository.SearchCandidate),
		rejected:   make(map[string]map[string]bool),
		settings:   make(map[string]string),
	}
}

func (s *Store) CreateResearchJob(ctx context.Context, job *domain.ResearchJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *job
	s.jobs[job.ID] = &cp
	if _, ok := s.ancestors[job.ID]; !ok {
		s.ancestors[job.ID] = make(map[int]*domain.Ancestor)
	}
	return nil
}

func (s *Store) UpdateResearchJob(ctx context.Context, jobID string, patch repository.JobPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Status != nil {
		job.Status = *patch.Status
	}
	if patch.ProgressMessage != nil {
		job.ProgressMessage = *patch.ProgressMessage
	}
	if patch.ProgressCurrent != nil {
		job.ProgressCurrent = *patch.ProgressCurrent
	}
	if patch.ProgressTotal != nil {
		job.ProgressTotal = *patch.ProgressTotal
	}
	if patch.ErrorMessage != nil {
		job.ErrorMessage = *patch.ErrorMessage
	}
	if patch.LevelCounts != nil {
		job.LevelCounts = patch.LevelCounts
	}
	job.Version++
	return nil
}

func (s *Store) UpdateJobProgress(ctx context.Context, jobID, message string, current, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return repository.ErrNotFound
	}
	job.UpdateProgress(message, current, total)
	job.Version++
	return nil
}

func (s *Store) GetResearchJob(ctx context.Context, jobID string) (*domain.ResearchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *Store) ListCompletedJobs(ctx context.Context) ([]*domain.ResearchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.ResearchJob
	for _, job := range s.jobs {
		if job.Status == domain.JobCompleted {
			cp := *job
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetAncestorByAscNumber(ctx context.Context, jobID string, a int) (*domain.Ancestor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.ancestors[jobID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	anc, ok := m[a]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *anc
	return &cp, nil
}

func (s *Store) GetAncestors(ctx context.Context, jobID string) ([]*domain.Ancestor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.ancestors[jobID]
	out := make([]*domain.Ancestor, 0, len(m))
	for _, anc := range m {
		cp := *anc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AscendancyNumber < out[j].AscendancyNumber })
	return out, nil
}

func (s *Store) GetAncestorByID(ctx context.Context, id uuid.UUID) (*domain.Ancestor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobID, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, a := range s.ancestors[jobID] {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) AddAncestor(ctx context.Context, row *domain.Ancestor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ancestors[row.JobID]
	if !ok {
		m = make(map[int]*domain.Ancestor)
		s.ancestors[row.JobID] = m
	}
	cp := *row
	m[row.AscendancyNumber] = &cp
	s.byID[row.ID] = row.JobID
	return nil
}

func (s *Store) UpdateAncestorByAscNumber(ctx context.Context, jobID string, a int, patch repository.AncestorPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ancestors[jobID]
	if !ok {
		return repository.ErrNotFound
	}
	anc, ok := m[a]
	if !ok {
		return repository.ErrNotFound
	}

	candidate := *anc
	if patch.GivenName != nil {
		candidate.GivenName = *patch.GivenName
	}
	if patch.Surname != nil {
		candidate.Surname = *patch.Surname
	}
	if patch.Gender != nil {
		candidate.Gender = *patch.Gender
	}
	if patch.BirthDate != nil {
		candidate.BirthDate = patch.BirthDate
	}
	if patch.BirthPlace != nil {
		candidate.BirthPlace = *patch.BirthPlace
	}
	if patch.DeathDate != nil {
		candidate.DeathDate = patch.DeathDate
	}
	if patch.DeathPlace != nil {
		candidate.DeathPlace = *patch.DeathPlace
	}
	if patch.ConfidenceLevel != nil {
		candidate.ConfidenceLevel = *patch.ConfidenceLevel
	}
	if patch.ConfidenceScore != nil {
		candidate.ConfidenceScore = *patch.ConfidenceScore
	}
	if patch.EvidenceChain != nil {
		candidate.EvidenceChain = patch.EvidenceChain
	}
	if patch.Sources != nil {
		candidate.Sources = patch.Sources
	}
	if patch.VerificationNotes != nil {
		candidate.VerificationNotes = *patch.VerificationNotes
	}
	if patch.ExternalPersonID != nil {
		candidate.ExternalPersonID = *patch.ExternalPersonID
	}
	if patch.FatherName != nil {
		candidate.FatherName = *patch.FatherName
	}
	if patch.MotherName != nil {
		candidate.MotherName = *patch.MotherName
	}
	if patch.MotherMaidenSurname != nil {
		candidate.MotherMaidenSurname = *patch.MotherMaidenSurname
	}
	candidate.EvidenceChain = append(candidate.EvidenceChain, patch.AppendEvidence...)
	candidate.SearchLog = append(candidate.SearchLog, patch.SearchLogAppend...)

	if err := anc.ApplyWrite(candidate); err != nil {
		return err
	}
	return nil
}

// DeleteDescendantAncestors removes A and its whole ascendancy subtree and
// returns the deleted ids.
func (s *Store) DeleteDescendantAncestors(ctx context.Context, jobID string, a int) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.ancestors[jobID]
	if !ok {
		return nil, nil
	}
	var deleted []uuid.UUID
	for asc, anc := range m {
		if domain.IsDescendantSlot(a, asc) {
			deleted = append(deleted, anc.ID)
			delete(s.byID, anc.ID)
			delete(m, asc)
		}
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i].String() < deleted[j].String() })
	return deleted, nil
}

func (s *Store) AddSearchCandidate(ctx context.Context, row repository.SearchCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.candidates[row.JobID]
	if !ok {
		m = make(map[int][]repository.SearchCandidate)
		s.candidates[row.JobID] = m
	}
	m[row.AscendancyNumber] = append(m[row.AscendancyNumber], row)
	return nil
}

func (s *Store) DeleteSearchCandidates(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.candidates, jobID)
	return nil
}

func (s *Store) GetSearchCandidates(ctx context.Context, jobID string, a int) ([]repository.SearchCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]repository.SearchCandidate(nil), s.candidates[jobID][a]...)
	return out, nil
}

func (s *Store) GetRejectedFsIDs(ctx context.Context, jobID string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.rejected[jobID]
	out := make(map[string]bool, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out, nil
}

// SetRejectedFsIDs is a test/seed helper: the set is read-only per job at
// engine-construction time, so the contract itself has no setter.
func (s *Store) SetRejectedFsIDs(jobID string, ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	s.rejected[jobID] = m
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.settings[key]
	return v, ok, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}
