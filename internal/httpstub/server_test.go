package httpstub_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/httpstub"
	"github.com/cacack/ancestry-research/internal/repository/memory"
)

func TestGetJobProgressReturnsJobAndAncestors(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	job := domain.NewResearchJob("job-1", domain.SubjectInput{GivenName: "Jane", Surname: "Smith"}, 2)
	require.NoError(t, repo.CreateResearchJob(ctx, job))
	require.NoError(t, repo.UpdateJobProgress(ctx, job.ID, "researching target", 3, 7))

	subject := domain.NewAncestor(job.ID, 1)
	subject.GivenName = "Jane"
	subject.Surname = "Smith"
	subject.ConfidenceLevel = domain.LevelCustomerData
	subject.ConfidenceScore = 100
	require.NoError(t, repo.AddAncestor(ctx, subject))

	father := domain.NewAncestor(job.ID, 2)
	father.GivenName = "John"
	father.Surname = "Smith"
	father.ConfidenceLevel = domain.LevelProbable
	father.ConfidenceScore = 80
	require.NoError(t, repo.AddAncestor(ctx, father))

	srv := httpstub.NewServer(repo, 0)
	req := httptest.NewRequest(http.MethodGet, "/jobs/job-1/progress", http.NoBody)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpstub.JobProgress
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "job-1", resp.JobId)
	require.Equal(t, "researching target", resp.ProgressMessage)
	require.Equal(t, 2, resp.Generations)
	require.Len(t, resp.Ancestors, 2)
	require.Equal(t, "Jane Smith", resp.Ancestors[0].Name)
	require.Equal(t, 2, resp.Ancestors[1].AscendancyNumber)
	require.Equal(t, "probable", resp.Ancestors[1].ConfidenceLevel)
	require.Equal(t, "male", resp.Ancestors[1].Gender)
}

func TestGetJobProgressUnknownJobIs404(t *testing.T) {
	srv := httpstub.NewServer(memory.New(), 0)
	req := httptest.NewRequest(http.MethodGet, "/jobs/nope/progress", http.NoBody)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp httpstub.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "not_found", resp.Code)
}
