// Package postgres is a Postgres-backed implementation of
// repository.Repository: raw database/sql with github.com/lib/pq, no ORM,
// as an alternate to the in-memory and SQLite implementations.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/repository"
)

// Store is a Postgres implementation of repository.Repository. Schema
// migrations live in internal/repository/postgres/migrations and are run
// with golang-migrate before Store is constructed; Store itself assumes the
// schema already exists.
type Store struct {
	db *sql.DB
}

// New wraps an already-migrated Postgres connection.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateResearchJob(ctx context.Context, job *domain.ResearchJob) error {
	subjectJSON, err := json.Marshal(job.Subject)
	if err != nil {
		return err
	}
	levelCountsJSON, err := json.Marshal(job.LevelCounts)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO research_jobs (id, subject_json, generations, status, progress_current, progress_total, progress_message, error_message, level_counts_json, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		job.ID, subjectJSON, job.Generations, string(job.Status),
		job.ProgressCurrent, job.ProgressTotal, job.ProgressMessage, job.ErrorMessage, levelCountsJSON, job.Version)
	return err
}

func (s *Store) UpdateResearchJob(ctx context.Context, jobID string, patch repository.JobPatch) error {
	job, err := s.GetResearchJob(ctx, jobID)
	if err != nil {
		return err
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
	levelCountsJSON, err := json.Marshal(job.LevelCounts)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE research_jobs SET status=$1, progress_current=$2, progress_total=$3, progress_message=$4, error_message=$5, level_counts_json=$6, version=version+1
		WHERE id=$7`,
		string(job.Status), job.ProgressCurrent, job.ProgressTotal, job.ProgressMessage, job.ErrorMessage, levelCountsJSON, jobID)
	return err
}

func (s *Store) UpdateJobProgress(ctx context.Context, jobID, message string, current, total int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE research_jobs SET progress_message=$1, progress_current=$2, progress_total=$3, version=version+1 WHERE id=$4`,
		message, current, total, jobID)
	return err
}

func (s *Store) GetResearchJob(ctx context.Context, jobID string) (*domain.ResearchJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subject_json, generations, status, progress_current, progress_total, progress_message, error_message, level_counts_json, version
		FROM research_jobs WHERE id=$1`, jobID)

	var job domain.ResearchJob
	var subjectJSON, levelCountsJSON []byte
	if err := row.Scan(&job.ID, &subjectJSON, &job.Generations, &job.Status,
		&job.ProgressCurrent, &job.ProgressTotal, &job.ProgressMessage, &job.ErrorMessage, &levelCountsJSON, &job.Version); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(subjectJSON, &job.Subject); err != nil {
		return nil, err
	}
	if len(levelCountsJSON) > 0 {
		_ = json.Unmarshal(levelCountsJSON, &job.LevelCounts)
	}
	return &job, nil
}

func (s *Store) ListCompletedJobs(ctx context.Context) ([]*domain.ResearchJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_json, generations, status, progress_current, progress_total, progress_message, error_message, level_counts_json, version
		FROM research_jobs WHERE status=$1 ORDER BY id`, string(domain.JobCompleted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ResearchJob
	for rows.Next() {
		var job domain.ResearchJob
		var subjectJSON, levelCountsJSON []byte
		if err := rows.Scan(&job.ID, &subjectJSON, &job.Generations, &job.Status,
			&job.ProgressCurrent, &job.ProgressTotal, &job.ProgressMessage, &job.ErrorMessage, &levelCountsJSON, &job.Version); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(subjectJSON, &job.Subject); err != nil {
			return nil, err
		}
		if len(levelCountsJSON) > 0 {
			_ = json.Unmarshal(levelCountsJSON, &job.LevelCounts)
		}
		out = append(out, &job)
	}
	return out, rows.Err()
}

const ancestorColumns = `id, job_id, ascendancy_number, generation, given_name, surname, gender,
	birth_date_json, birth_place, death_date_json, death_place, confidence_level, confidence_score,
	evidence_chain_json, search_log_json, sources_json, verification_notes, external_person_id,
	father_name, mother_name, mother_maiden_surname, version`

func (s *Store) scanAncestor(row interface {
	Scan(dest ...any) error
}) (*domain.Ancestor, error) {
	var a domain.Ancestor
	var birthDateJSON, deathDateJSON, evidenceJSON, logJSON, sourcesJSON []byte
	err := row.Scan(&a.ID, &a.JobID, &a.AscendancyNumber, &a.Generation, &a.GivenName, &a.Surname, &a.Gender,
		&birthDateJSON, &a.BirthPlace, &deathDateJSON, &a.DeathPlace, &a.ConfidenceLevel, &a.ConfidenceScore,
		&evidenceJSON, &logJSON, &sourcesJSON, &a.VerificationNotes, &a.ExternalPersonID,
		&a.FatherName, &a.MotherName, &a.MotherMaidenSurname, &a.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if len(birthDateJSON) > 0 {
		var d domain.PartialDate
		if err := json.Unmarshal(birthDateJSON, &d); err == nil {
			a.BirthDate = &d
		}
	}
	if len(deathDateJSON) > 0 {
		var d domain.PartialDate
		if err := json.Unmarshal(deathDateJSON, &d); err == nil {
			a.DeathDate = &d
		}
	}
	if len(evidenceJSON) > 0 {
		_ = json.Unmarshal(evidenceJSON, &a.EvidenceChain)
	}
	if len(logJSON) > 0 {
		_ = json.Unmarshal(logJSON, &a.SearchLog)
	}
	if len(sourcesJSON) > 0 {
		_ = json.Unmarshal(sourcesJSON, &a.Sources)
	}
	return &a, nil
}

func (s *Store) GetAncestorByAscNumber(ctx context.Context, jobID string, a int) (*domain.Ancestor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ancestorColumns+` FROM ancestors WHERE job_id=$1 AND ascendancy_number=$2`, jobID, a)
	return s.scanAncestor(row)
}

func (s *Store) GetAncestorByID(ctx context.Context, id uuid.UUID) (*domain.Ancestor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ancestorColumns+` FROM ancestors WHERE id=$1`, id)
	return s.scanAncestor(row)
}

func (s *Store) GetAncestors(ctx context.Context, jobID string) ([]*domain.Ancestor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+ancestorColumns+` FROM ancestors WHERE job_id=$1 ORDER BY ascendancy_number`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Ancestor
	for rows.Next() {
		a, err := s.scanAncestor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) AddAncestor(ctx context.Context, a *domain.Ancestor) error {
	birthDateJSON, _ := json.Marshal(a.BirthDate)
	deathDateJSON, _ := json.Marshal(a.DeathDate)
	evidenceJSON, _ := json.Marshal(a.EvidenceChain)
	logJSON, _ := json.Marshal(a.SearchLog)
	sourcesJSON, _ := json.Marshal(a.Sources)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ancestors (id, job_id, ascendancy_number, generation, given_name, surname, gender,
			birth_date_json, birth_place, death_date_json, death_place, confidence_level, confidence_score,
			evidence_chain_json, search_log_json, sources_json, verification_notes, external_person_id,
			father_name, mother_name, mother_maiden_surname, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)`,
		a.ID, a.JobID, a.AscendancyNumber, a.Generation, a.GivenName, a.Surname, string(a.Gender),
		birthDateJSON, a.BirthPlace, deathDateJSON, a.DeathPlace, string(a.ConfidenceLevel), a.ConfidenceScore,
		evidenceJSON, logJSON, sourcesJSON, a.VerificationNotes, a.ExternalPersonID,
		a.FatherName, a.MotherName, a.MotherMaidenSurname, a.Version)
	return err
}

func (s *Store) UpdateAncestorByAscNumber(ctx context.Context, jobID string, a int, patch repository.AncestorPatch) error {
	current, err := s.GetAncestorByAscNumber(ctx, jobID, a)
	if err != nil {
		return err
	}

	candidate := *current
	applyAncestorPatch(&candidate, patch)

	if err := current.ApplyWrite(candidate); err != nil {
		return err
	}

	birthDateJSON, _ := json.Marshal(current.BirthDate)
	deathDateJSON, _ := json.Marshal(current.DeathDate)
	evidenceJSON, _ := json.Marshal(current.EvidenceChain)
	logJSON, _ := json.Marshal(current.SearchLog)
	sourcesJSON, _ := json.Marshal(current.Sources)

	_, err = s.db.ExecContext(ctx, `
		UPDATE ancestors SET given_name=$1, surname=$2, gender=$3, birth_date_json=$4, birth_place=$5, death_date_json=$6,
			death_place=$7, confidence_level=$8, confidence_score=$9, evidence_chain_json=$10, search_log_json=$11,
			sources_json=$12, verification_notes=$13, external_person_id=$14, father_name=$15, mother_name=$16,
			mother_maiden_surname=$17, version=$18
		WHERE job_id=$19 AND ascendancy_number=$20`,
		current.GivenName, current.Surname, string(current.Gender), birthDateJSON, current.BirthPlace,
		deathDateJSON, current.DeathPlace, string(current.ConfidenceLevel), current.ConfidenceScore,
		evidenceJSON, logJSON, sourcesJSON, current.VerificationNotes, current.ExternalPersonID,
		current.FatherName, current.MotherName, current.MotherMaidenSurname, current.Version, jobID, a)
	return err
}

func applyAncestorPatch(candidate *domain.Ancestor, patch repository.AncestorPatch) {
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
}

func (s *Store) DeleteDescendantAncestors(ctx context.Context, jobID string, a int) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, ascendancy_number FROM ancestors WHERE job_id=$1`, jobID)
	if err != nil {
		return nil, err
	}
	var deleted []uuid.UUID
	var toDelete []int
	for rows.Next() {
		var id uuid.UUID
		var asc int
		if err := rows.Scan(&id, &asc); err != nil {
			rows.Close()
			return nil, err
		}
		if domain.IsDescendantSlot(a, asc) {
			deleted = append(deleted, id)
			toDelete = append(toDelete, asc)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, asc := range toDelete {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM ancestors WHERE job_id=$1 AND ascendancy_number=$2`, jobID, asc); err != nil {
			return nil, err
		}
	}
	return deleted, nil
}

func (s *Store) AddSearchCandidate(ctx context.Context, row repository.SearchCandidate) error {
	id := row.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_candidates (id, job_id, ascendancy_number, rank, surname, forenames, birth_year, quarter, district, volume, page, score)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		id, row.JobID, row.AscendancyNumber, row.Rank, row.Surname, row.Forenames,
		row.BirthYear, row.Quarter, row.District, row.Volume, row.Page, row.Score)
	return err
}

func (s *Store) DeleteSearchCandidates(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM search_candidates WHERE job_id=$1`, jobID)
	return err
}

func (s *Store) GetSearchCandidates(ctx context.Context, jobID string, a int) ([]repository.SearchCandidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, ascendancy_number, rank, surname, forenames, birth_year, quarter, district, volume, page, score
		FROM search_candidates WHERE job_id=$1 AND ascendancy_number=$2 ORDER BY rank`, jobID, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.SearchCandidate
	for rows.Next() {
		var c repository.SearchCandidate
		if err := rows.Scan(&c.ID, &c.JobID, &c.AscendancyNumber, &c.Rank, &c.Surname, &c.Forenames,
			&c.BirthYear, &c.Quarter, &c.District, &c.Volume, &c.Page, &c.Score); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetRejectedFsIDs(ctx context.Context, jobID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fs_id FROM rejected_fs_ids WHERE job_id=$1`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var fsID string
		if err := rows.Scan(&fsID); err != nil {
			return nil, err
		}
		out[fsID] = true
	}
	return out, rows.Err()
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key=$1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}
