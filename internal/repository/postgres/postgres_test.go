// Package postgres_test provides integration tests that run the full
// migration set and repository lifecycle against a real Postgres container.
package postgres_test

import (
	"context"
	"database/sql"
	"os/exec"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/repository"
	pgstore "github.com/cacack/ancestry-research/internal/repository/postgres"
)

func isDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

func setupPostgres(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	if !isDockerAvailable() {
		t.Skip("Docker is not available, skipping PostgreSQL integration test")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := pgstore.Migrate(connStr); err != nil {
		container.Terminate(ctx)
		t.Fatalf("failed to run migrations: %v", err)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	for i := 0; i < 30; i++ {
		if err := db.Ping(); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	cleanup := func() {
		db.Close()
		container.Terminate(ctx)
	}

	return db, cleanup
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

func TestStore_JobAndAncestorLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgres(t)
	defer cleanup()

	store := pgstore.New(db)
	ctx := context.Background()
	job := newJob(t)

	require.NoError(t, store.CreateResearchJob(ctx, job))

	got, err := store.GetResearchJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice", got.Subject.GivenName)

	running := domain.JobRunning
	msg := "phase 1"
	cur, tot := 1, 7
	require.NoError(t, store.UpdateResearchJob(ctx, job.ID, repository.JobPatch{
		Status: &running, ProgressMessage: &msg, ProgressCurrent: &cur, ProgressTotal: &tot,
	}))
	got, err = store.GetResearchJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobRunning, got.Status)

	a := domain.NewAncestor(job.ID, 2)
	a.GivenName = "John"
	a.Surname = "Shepherd"
	require.NoError(t, store.AddAncestor(ctx, a))

	fetched, err := store.GetAncestorByAscNumber(ctx, job.ID, 2)
	require.NoError(t, err)
	require.Equal(t, "John", fetched.GivenName)
	require.Equal(t, domain.GenderMale, fetched.Gender)

	newScore := 65
	newLevel := domain.LevelProbable
	require.NoError(t, store.UpdateAncestorByAscNumber(ctx, job.ID, 2, repository.AncestorPatch{
		ConfidenceScore: &newScore,
		ConfidenceLevel: &newLevel,
		AppendEvidence:  []domain.EvidenceRecord{domain.NewEvidenceRecord(domain.EvidenceBirth, "gro.gov.uk", domain.AspectIdentity)},
	}))

	updated, err := store.GetAncestorByAscNumber(ctx, job.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 65, updated.ConfidenceScore)
	require.Len(t, updated.EvidenceChain, 1)

	for _, asc := range []int{4, 5} {
		require.NoError(t, store.AddAncestor(ctx, domain.NewAncestor(job.ID, asc)))
	}
	deleted, err := store.DeleteDescendantAncestors(ctx, job.ID, 2)
	require.NoError(t, err)
	require.Len(t, deleted, 3)

	require.NoError(t, store.SetSetting(ctx, "civilindex.api_key", "secret"))
	val, ok, err := store.GetSetting(ctx, "civilindex.api_key")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "secret", val)
}
