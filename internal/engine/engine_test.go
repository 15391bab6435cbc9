package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/repository/memory"
	"github.com/cacack/ancestry-research/internal/sources"
)

// fakeAdapter is a canned Adapter backed by in-memory fixture tables,
// exercising the engine against the same Adapter contract a real
// civilindex/treeapi client would satisfy, without a network call.
type fakeAdapter struct {
	name         string
	capabilities map[domain.SourceCapability]bool

	births    []sources.BirthEntry
	marriages []sources.MarriageEntry
	deaths    map[string]sources.DeathEntry
	persons   []sources.PersonCandidate
	parents   map[string]sources.Parents
	facts     map[string]sources.PersonFacts
}

func (f *fakeAdapter) Name() string                                   { return f.name }
func (f *fakeAdapter) IsAvailable() bool                              { return true }
func (f *fakeAdapter) Capabilities() map[domain.SourceCapability]bool { return f.capabilities }

func (f *fakeAdapter) SearchBirths(ctx context.Context, surname, given string, yearFrom, yearTo int, district string) ([]sources.BirthEntry, error) {
	var out []sources.BirthEntry
	for _, b := range f.births {
		if !domain.NamesSimilar(surname, b.Surname) {
			continue
		}
		if b.Year < yearFrom || b.Year > yearTo {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeAdapter) SearchMarriages(ctx context.Context, surname, given string, yearFrom, yearTo int, district string) ([]sources.MarriageEntry, error) {
	var out []sources.MarriageEntry
	for _, m := range f.marriages {
		if !domain.NamesSimilar(surname, m.GroomSurname) && !domain.NamesSimilar(surname, m.BrideSurname) {
			continue
		}
		if m.Year < yearFrom || m.Year > yearTo {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeAdapter) ConfirmDeath(ctx context.Context, given, surname string, year int) (*sources.DeathEntry, error) {
	d, ok := f.deaths[given+" "+surname]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeAdapter) SearchPerson(ctx context.Context, q sources.PersonSearchQuery) ([]sources.PersonCandidate, error) {
	var out []sources.PersonCandidate
	for _, p := range f.persons {
		if domain.NamesSimilar(q.Surname, p.Surname) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAdapter) GetParents(ctx context.Context, personID string) (*sources.Parents, error) {
	p, ok := f.parents[personID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeAdapter) ExtractFacts(ctx context.Context, personID string) (*sources.PersonFacts, error) {
	pf, ok := f.facts[personID]
	if !ok {
		return &sources.PersonFacts{}, nil
	}
	return &pf, nil
}

func newPrimaryOnly() *fakeAdapter {
	return &fakeAdapter{
		name: "civil-index",
		capabilities: map[domain.SourceCapability]bool{
			domain.CapabilitySearchPrimary: true,
			domain.CapabilityConfirmation:  true,
		},
		deaths: make(map[string]sources.DeathEntry),
		parents: make(map[string]sources.Parents),
		facts:   make(map[string]sources.PersonFacts),
	}
}

func baseJob(t *testing.T, generations int) *domain.ResearchJob {
	t.Helper()
	job := domain.NewResearchJob("job-1", domain.SubjectInput{
		GivenName:  "Alice",
		Surname:    "Shepherd",
		BirthDate:  "1950",
		FatherName: "Robert Shepherd",
		MotherName: "Jane Carter",
		Notes:      "Her father was Robert Shepherd (1922-1995) and her mother was Jane Carter (1925-1998).",
	}, generations)
	require.NoError(t, job.Validate())
	return job
}

// With no sources registered at all, the engine must still complete the
// job and leave every un-anchored slot as a Not Found placeholder (the
// no-sources degraded mode), never erroring out.
func TestEngineRunNoSources(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	e := New(repo, sources.NewRegistry(), nil)

	job := baseJob(t, 2)
	require.NoError(t, e.CreateJob(ctx, job))
	require.NoError(t, e.Run(ctx, job.ID))

	finished, err := repo.GetResearchJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobCompleted, finished.Status)
	require.Equal(t, 3, finished.LevelCounts[domain.LevelCustomerData])
	// The father slots (4, 6) get placeholders; the mother slots have no
	// surname seed at all without a marriage, so they are never attempted.
	require.Equal(t, 2, finished.LevelCounts[domain.LevelNotFound])

	subject, err := repo.GetAncestorByAscNumber(ctx, job.ID, 1)
	require.NoError(t, err)
	require.Equal(t, domain.LevelCustomerData, subject.ConfidenceLevel)

	father, err := repo.GetAncestorByAscNumber(ctx, job.ID, 2)
	require.NoError(t, err)
	require.Equal(t, domain.LevelCustomerData, father.ConfidenceLevel)

	grandfather, err := repo.GetAncestorByAscNumber(ctx, job.ID, 4)
	require.NoError(t, err)
	require.Equal(t, domain.LevelNotFound, grandfather.ConfidenceLevel)
}

// A civil-index adapter offering a clean birth hit plus a cross-checked
// marriage forms the triangle-lite: Probable, well clear of the expansion
// threshold, with both records in the grandfather's evidence chain.
func TestEngineRunScoresGrandfatherFromBirthAndMarriage(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	primary := newPrimaryOnly()
	primary.births = []sources.BirthEntry{
		// Robert Shepherd's own birth (A=2), found by Phase 1's anchor
		// confirmation, not scored toward any target.
		{Surname: "Shepherd", Forenames: "Robert", Year: 1922, Quarter: 2, District: "Exeter", Volume: "5a", Page: "112"},
		// William Shepherd, Robert's father (A=4): the actual Phase 3 target,
		// found by searching around Robert's estimated parent birth year.
		{Surname: "Shepherd", Forenames: "William", Year: 1894, Quarter: 1, District: "Exeter", Volume: "3b", Page: "201", MotherMaidenSurname: "Dyer"},
	}
	primary.marriages = []sources.MarriageEntry{
		{GroomSurname: "Shepherd", GroomForenames: "William", BrideSurname: "Dyer", BrideForenames: "Ann", Year: 1890, District: "Exeter", Volume: "2a", Page: "55"},
	}

	e := New(repo, sources.NewRegistry(primary), nil)

	job := baseJob(t, 2)
	require.NoError(t, e.CreateJob(ctx, job))
	require.NoError(t, e.Run(ctx, job.ID))

	grandfather, err := repo.GetAncestorByAscNumber(ctx, job.ID, 4)
	require.NoError(t, err)
	require.Equal(t, "William", grandfather.GivenName)
	require.Equal(t, "Shepherd", grandfather.Surname)
	require.Equal(t, domain.LevelProbable, grandfather.ConfidenceLevel)
	require.Equal(t, 89, grandfather.ConfidenceScore)
	require.Len(t, grandfather.EvidenceChain, 2)
}

// A customer-provided anchor is never downgraded or overwritten, even when
// the only matching civil-index record would otherwise produce a lower
// confidence identification for the same slot.
func TestEngineProtectsCustomerDataAnchor(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()

	primary := newPrimaryOnly()
	primary.births = []sources.BirthEntry{
		{Surname: "Shepherd", Forenames: "Someone Else", Year: 1890, Quarter: 1, District: "Leeds"},
	}
	e := New(repo, sources.NewRegistry(primary), nil)

	job := baseJob(t, 1)
	require.NoError(t, e.CreateJob(ctx, job))
	require.NoError(t, e.Run(ctx, job.ID))

	father, err := repo.GetAncestorByAscNumber(ctx, job.ID, 2)
	require.NoError(t, err)
	require.Equal(t, domain.LevelCustomerData, father.ConfidenceLevel)
	require.Equal(t, "Robert", father.GivenName)
}

// ReResearch on a non-subject ascendancy number deletes its descendants and
// re-runs the job to completion; ReResearch on the subject itself is
// rejected outright.
func TestEngineReResearch(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	primary := newPrimaryOnly()
	primary.births = []sources.BirthEntry{
		{Surname: "Shepherd", Forenames: "Robert", Year: 1922, Quarter: 2, District: "Exeter", Volume: "5a", Page: "112"},
	}
	e := New(repo, sources.NewRegistry(primary), nil)

	job := baseJob(t, 2)
	require.NoError(t, e.CreateJob(ctx, job))
	require.NoError(t, e.Run(ctx, job.ID))

	require.ErrorIs(t, e.ReResearch(ctx, job.ID, 1), ErrCannotReResearchSubject)

	require.NoError(t, e.ReResearch(ctx, job.ID, 2))
	finished, err := repo.GetResearchJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobCompleted, finished.Status)
}

// A job whose context is cancelled before Run starts stops at the first
// suspension point (Phase 1's anchor loop) and is marked failed with the
// explicit cancellation reason, rather than running to completion.
func TestEngineRunStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := memory.New()
	e := New(repo, sources.NewRegistry(), nil)

	job := baseJob(t, 2)
	require.NoError(t, e.CreateJob(ctx, job))
	cancel()

	require.NoError(t, e.Run(ctx, job.ID))

	finished, err := repo.GetResearchJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, domain.JobFailed, finished.Status)
	require.Contains(t, finished.ErrorMessage, "job cancelled")
}
