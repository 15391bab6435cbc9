// Package sqlite is a SQLite-backed implementation of repository.Repository:
// raw database/sql with github.com/mattn/go-sqlite3, a createTables
// bootstrap instead of a migration tool, and JSON columns for nested
// structures.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/repository"
)

// Store is a SQLite implementation of repository.Repository.
type Store struct {
	db *sql.DB
}

// New opens (and bootstraps the schema of) a SQLite-backed Store.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("sqlite: create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS research_jobs (
			id TEXT PRIMARY KEY,
			subject_json TEXT NOT NULL,
			generations INTEGER NOT NULL,
			status TEXT NOT NULL,
			progress_current INTEGER NOT NULL DEFAULT 0,
			progress_total INTEGER NOT NULL DEFAULT 0,
			progress_message TEXT,
			error_message TEXT,
			level_counts_json TEXT,
			version INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS ancestors (
			id TEXT PRIMARY KEY,
			job_id TEXT NOT NULL,
			ascendancy_number INTEGER NOT NULL,
			generation INTEGER NOT NULL,
			given_name TEXT,
			surname TEXT,
			gender TEXT,
			birth_date_json TEXT,
			birth_place TEXT,
			death_date_json TEXT,
			death_place TEXT,
			confidence_level TEXT NOT NULL,
			confidence_score INTEGER NOT NULL DEFAULT 0,
			evidence_chain_json TEXT,
			search_log_json TEXT,
			sources_json TEXT,
			verification_notes TEXT,
			external_person_id TEXT,
			father_name TEXT,
			mother_name TEXT,
			mother_maiden_surname TEXT,
			version INTEGER NOT NULL DEFAULT 1,
			UNIQUE(job_id, ascendancy_number)
		);
		CREATE INDEX IF NOT EXISTS idx_ancestors_job ON ancestors(job_id);

		CREATE TABLE IF NOT EXISTS search_candidates (
			id TEXT PRIMARY KEY,
			job_id TEXT NOT NULL,
			ascendancy_number INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			surname TEXT,
			forenames TEXT,
			birth_year INTEGER,
			quarter INTEGER,
			district TEXT,
			volume TEXT,
			page TEXT,
			score INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_candidates_job_asc ON search_candidates(job_id, ascendancy_number);

		CREATE TABLE IF NOT EXISTS rejected_fs_ids (
			job_id TEXT NOT NULL,
			fs_id TEXT NOT NULL,
			PRIMARY KEY (job_id, fs_id)
		);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, string(subjectJSON), job.Generations, string(job.Status),
		job.ProgressCurrent, job.ProgressTotal, job.ProgressMessage, job.ErrorMessage, string(levelCountsJSON), job.Version)
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
		UPDATE research_jobs SET status=?, progress_current=?, progress_total=?, progress_message=?, error_message=?, level_counts_json=?, version=version+1
		WHERE id=?`,
		string(job.Status), job.ProgressCurrent, job.ProgressTotal, job.ProgressMessage, job.ErrorMessage, string(levelCountsJSON), jobID)
	return err
}

func (s *Store) UpdateJobProgress(ctx context.Context, jobID, message string, current, total int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE research_jobs SET progress_message=?, progress_current=?, progress_total=?, version=version+1 WHERE id=?`,
		message, current, total, jobID)
	return err
}

func (s *Store) GetResearchJob(ctx context.Context, jobID string) (*domain.ResearchJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subject_json, generations, status, progress_current, progress_total, progress_message, error_message, level_counts_json, version
		FROM research_jobs WHERE id=?`, jobID)

	var job domain.ResearchJob
	var subjectJSON string
	var levelCountsJSON sql.NullString
	if err := row.Scan(&job.ID, &subjectJSON, &job.Generations, &job.Status,
		&job.ProgressCurrent, &job.ProgressTotal, &job.ProgressMessage, &job.ErrorMessage, &levelCountsJSON, &job.Version); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(subjectJSON), &job.Subject); err != nil {
		return nil, err
	}
	if levelCountsJSON.Valid && levelCountsJSON.String != "" {
		_ = json.Unmarshal([]byte(levelCountsJSON.String), &job.LevelCounts)
	}
	return &job, nil
}

func (s *Store) ListCompletedJobs(ctx context.Context) ([]*domain.ResearchJob, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_json, generations, status, progress_current, progress_total, progress_message, error_message, level_counts_json, version
		FROM research_jobs WHERE status=? ORDER BY id`, string(domain.JobCompleted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ResearchJob
	for rows.Next() {
		var job domain.ResearchJob
		var subjectJSON string
		var levelCountsJSON sql.NullString
		if err := rows.Scan(&job.ID, &subjectJSON, &job.Generations, &job.Status,
			&job.ProgressCurrent, &job.ProgressTotal, &job.ProgressMessage, &job.ErrorMessage, &levelCountsJSON, &job.Version); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(subjectJSON), &job.Subject); err != nil {
			return nil, err
		}
		if levelCountsJSON.Valid && levelCountsJSON.String != "" {
			_ = json.Unmarshal([]byte(levelCountsJSON.String), &job.LevelCounts)
		}
		out = append(out, &job)
	}
	return out, rows.Err()
}

func (s *Store) scanAncestor(row interface {
	Scan(dest ...any) error
}) (*domain.Ancestor, error) {
	var a domain.Ancestor
	var birthDateJSON, deathDateJSON, evidenceJSON, logJSON, sourcesJSON sql.NullString
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
	if birthDateJSON.Valid && birthDateJSON.String != "" {
		var d domain.PartialDate
		if err := json.Unmarshal([]byte(birthDateJSON.String), &d); err == nil {
			a.BirthDate = &d
		}
	}
	if deathDateJSON.Valid && deathDateJSON.String != "" {
		var d domain.PartialDate
		if err := json.Unmarshal([]byte(deathDateJSON.String), &d); err == nil {
			a.DeathDate = &d
		}
	}
	if evidenceJSON.Valid && evidenceJSON.String != "" {
		_ = json.Unmarshal([]byte(evidenceJSON.String), &a.EvidenceChain)
	}
	if logJSON.Valid && logJSON.String != "" {
		_ = json.Unmarshal([]byte(logJSON.String), &a.SearchLog)
	}
	if sourcesJSON.Valid && sourcesJSON.String != "" {
		_ = json.Unmarshal([]byte(sourcesJSON.String), &a.Sources)
	}
	return &a, nil
}

const ancestorColumns = `id, job_id, ascendancy_number, generation, given_name, surname, gender,
	birth_date_json, birth_place, death_date_json, death_place, confidence_level, confidence_score,
	evidence_chain_json, search_log_json, sources_json, verification_notes, external_person_id,
	father_name, mother_name, mother_maiden_surname, version`

func (s *Store) GetAncestorByAscNumber(ctx context.Context, jobID string, a int) (*domain.Ancestor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ancestorColumns+` FROM ancestors WHERE job_id=? AND ascendancy_number=?`, jobID, a)
	return s.scanAncestor(row)
}

func (s *Store) GetAncestorByID(ctx context.Context, id uuid.UUID) (*domain.Ancestor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ancestorColumns+` FROM ancestors WHERE id=?`, id.String())
	return s.scanAncestor(row)
}

func (s *Store) GetAncestors(ctx context.Context, jobID string) ([]*domain.Ancestor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+ancestorColumns+` FROM ancestors WHERE job_id=? ORDER BY ascendancy_number`, jobID)
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
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID.String(), a.JobID, a.AscendancyNumber, a.Generation, a.GivenName, a.Surname, string(a.Gender),
		string(birthDateJSON), a.BirthPlace, string(deathDateJSON), a.DeathPlace, string(a.ConfidenceLevel), a.ConfidenceScore,
		string(evidenceJSON), string(logJSON), string(sourcesJSON), a.VerificationNotes, a.ExternalPersonID,
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
		UPDATE ancestors SET given_name=?, surname=?, gender=?, birth_date_json=?, birth_place=?, death_date_json=?,
			death_place=?, confidence_level=?, confidence_score=?, evidence_chain_json=?, search_log_json=?,
			sources_json=?, verification_notes=?, external_person_id=?, father_name=?, mother_name=?,
			mother_maiden_surname=?, version=?
		WHERE job_id=? AND ascendancy_number=?`,
		current.GivenName, current.Surname, string(current.Gender), string(birthDateJSON), current.BirthPlace,
		string(deathDateJSON), current.DeathPlace, string(current.ConfidenceLevel), current.ConfidenceScore,
		string(evidenceJSON), string(logJSON), string(sourcesJSON), current.VerificationNotes, current.ExternalPersonID,
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
	rows, err := s.db.QueryContext(ctx, `SELECT id, ascendancy_number FROM ancestors WHERE job_id=?`, jobID)
	if err != nil {
		return nil, err
	}
	var deleted []uuid.UUID
	var toDelete []int
	for rows.Next() {
		var idStr string
		var asc int
		if err := rows.Scan(&idStr, &asc); err != nil {
			rows.Close()
			return nil, err
		}
		if domain.IsDescendantSlot(a, asc) {
			if id, err := uuid.Parse(idStr); err == nil {
				deleted = append(deleted, id)
			}
			toDelete = append(toDelete, asc)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, asc := range toDelete {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM ancestors WHERE job_id=? AND ascendancy_number=?`, jobID, asc); err != nil {
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
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		id.String(), row.JobID, row.AscendancyNumber, row.Rank, row.Surname, row.Forenames,
		row.BirthYear, row.Quarter, row.District, row.Volume, row.Page, row.Score)
	return err
}

func (s *Store) DeleteSearchCandidates(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM search_candidates WHERE job_id=?`, jobID)
	return err
}

func (s *Store) GetSearchCandidates(ctx context.Context, jobID string, a int) ([]repository.SearchCandidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, ascendancy_number, rank, surname, forenames, birth_year, quarter, district, volume, page, score
		FROM search_candidates WHERE job_id=? AND ascendancy_number=? ORDER BY rank`, jobID, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.SearchCandidate
	for rows.Next() {
		var c repository.SearchCandidate
		var idStr string
		if err := rows.Scan(&idStr, &c.JobID, &c.AscendancyNumber, &c.Rank, &c.Surname, &c.Forenames,
			&c.BirthYear, &c.Quarter, &c.District, &c.Volume, &c.Page, &c.Score); err != nil {
			return nil, err
		}
		c.ID, _ = uuid.Parse(idStr)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetRejectedFsIDs(ctx context.Context, jobID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fs_id FROM rejected_fs_ids WHERE job_id=?`, jobID)
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
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key=?`, key).Scan(&value)
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
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}
