package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/repository"
	"github.com/cacack/ancestry-research/internal/repository/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := sqlite.New(db)
	require.NoError(t, err)
	return s
}

func newJob(t *testing.T) *domain.ResearchJob {
	t.Helper()
	job := domain.NewResearchJob("job-1", domain.SubjectInput{
		GivenName: "Alice",
		Surname:   "Shepherd",
		BirthDate: "1950",
	}, 2)
	require.NoError(t, job.Validate())
	return job
}

func TestStore_CreateAndGetResearchJob(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	job := newJob(t)

	require.NoError(t, s.CreateResearchJob(ctx, job))

	got, err := s.GetResearchJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, got.ID)
	require.Equal(t, "Alice", got.Subject.GivenName)
	require.Equal(t, domain.JobPending, got.Status)

	_, err = s.GetResearchJob(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_UpdateResearchJobPatch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	job := newJob(t)
	require.NoError(t, s.CreateResearchJob(ctx, job))

	running := domain.JobRunning
	msg := "phase 1"
	cur, tot := 1, 7
	require.NoError(t, s.UpdateResearchJob(ctx, job.ID, repository.JobPatch{
		Status: &running, ProgressMessage: &msg, ProgressCurrent: &cur, ProgressTotal: &tot,
	}))

	got, err := s.GetResearchJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobRunning, got.Status)
	require.Equal(t, "phase 1", got.ProgressMessage)
	require.Equal(t, 1, got.ProgressCurrent)

	completed := domain.JobCompleted
	require.NoError(t, s.UpdateResearchJob(ctx, job.ID, repository.JobPatch{
		Status: &completed,
		LevelCounts: map[domain.ConfidenceLevel]int{
			domain.LevelCustomerData: 1,
			domain.LevelProbable:     2,
		},
	}))

	finished, err := s.GetResearchJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobCompleted, finished.Status)
	require.Equal(t, 1, finished.LevelCounts[domain.LevelCustomerData])
	require.Equal(t, 2, finished.LevelCounts[domain.LevelProbable])
}

func TestStore_AncestorRoundTripAndPatch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	job := newJob(t)
	require.NoError(t, s.CreateResearchJob(ctx, job))

	a := domain.NewAncestor(job.ID, 2)
	a.GivenName = "John"
	a.Surname = "Shepherd"
	require.NoError(t, s.AddAncestor(ctx, a))

	got, err := s.GetAncestorByAscNumber(ctx, job.ID, 2)
	require.NoError(t, err)
	require.Equal(t, "John", got.GivenName)
	require.Equal(t, domain.GenderMale, got.Gender)

	newScore := 65
	newLevel := domain.LevelProbable
	require.NoError(t, s.UpdateAncestorByAscNumber(ctx, job.ID, 2, repository.AncestorPatch{
		ConfidenceScore: &newScore,
		ConfidenceLevel: &newLevel,
		AppendEvidence:  []domain.EvidenceRecord{domain.NewEvidenceRecord(domain.EvidenceBirth, "gro.gov.uk", domain.AspectIdentity)},
	}))

	updated, err := s.GetAncestorByAscNumber(ctx, job.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 65, updated.ConfidenceScore)
	require.Equal(t, domain.LevelProbable, updated.ConfidenceLevel)
	require.Len(t, updated.EvidenceChain, 1)
}

func TestStore_CustomerDataProtectedOnPatch(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	job := newJob(t)
	require.NoError(t, s.CreateResearchJob(ctx, job))

	a := domain.NewAncestor(job.ID, 2)
	a.GivenName = "John"
	a.Surname = "Shepherd"
	a.ConfidenceLevel = domain.LevelCustomerData
	a.ConfidenceScore = 100
	require.NoError(t, s.AddAncestor(ctx, a))

	lower := domain.LevelPossible
	differentName := "Jonathan"
	err := s.UpdateAncestorByAscNumber(ctx, job.ID, 2, repository.AncestorPatch{
		GivenName:       &differentName,
		ConfidenceLevel: &lower,
	})
	require.ErrorIs(t, err, domain.ErrCustomerDataProtected)

	got, err := s.GetAncestorByAscNumber(ctx, job.ID, 2)
	require.NoError(t, err)
	require.Equal(t, "John", got.GivenName)
	require.Equal(t, domain.LevelCustomerData, got.ConfidenceLevel)
}

func TestStore_DeleteDescendantAncestors(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	job := newJob(t)
	require.NoError(t, s.CreateResearchJob(ctx, job))

	for _, asc := range []int{2, 4, 5, 8, 9, 10, 11, 3} {
		a := domain.NewAncestor(job.ID, asc)
		require.NoError(t, s.AddAncestor(ctx, a))
	}

	deleted, err := s.DeleteDescendantAncestors(ctx, job.ID, 2)
	require.NoError(t, err)
	require.Len(t, deleted, 7) // 2,4,5,8,9,10,11

	remaining, err := s.GetAncestors(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, 3, remaining[0].AscendancyNumber)
}

func TestStore_SearchCandidatesAndSettings(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	job := newJob(t)
	require.NoError(t, s.CreateResearchJob(ctx, job))

	require.NoError(t, s.AddSearchCandidate(ctx, repository.SearchCandidate{
		JobID: job.ID, AscendancyNumber: 2, Rank: 1, Surname: "Shepherd", BirthYear: 1920, Score: 80,
	}))
	require.NoError(t, s.AddSearchCandidate(ctx, repository.SearchCandidate{
		JobID: job.ID, AscendancyNumber: 2, Rank: 2, Surname: "Shephard", BirthYear: 1920, Score: 60,
	}))

	cands, err := s.GetSearchCandidates(ctx, job.ID, 2)
	require.NoError(t, err)
	require.Len(t, cands, 2)
	require.Equal(t, 1, cands[0].Rank)

	require.NoError(t, s.DeleteSearchCandidates(ctx, job.ID))
	cands, err = s.GetSearchCandidates(ctx, job.ID, 2)
	require.NoError(t, err)
	require.Empty(t, cands)

	_, ok, err := s.GetSetting(ctx, "civilindex.api_key")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.SetSetting(ctx, "civilindex.api_key", "secret"))
	val, ok, err := s.GetSetting(ctx, "civilindex.api_key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "secret", val)

	require.NoError(t, s.SetSetting(ctx, "civilindex.api_key", "rotated"))
	val, ok, err = s.GetSetting(ctx, "civilindex.api_key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "rotated", val)
}
