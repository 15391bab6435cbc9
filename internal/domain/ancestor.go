package domain

import (
	"errors"
	"fmt"
	"math/bits"
	"time"

	"github.com/google/uuid"
)

// ConfidenceLevel is the engine's determination of how trustworthy an
// ancestor's identification is.
type ConfidenceLevel string

const (
	LevelCustomerData ConfidenceLevel = "customer_data"
	LevelVerified     ConfidenceLevel = "verified"
	LevelProbable     ConfidenceLevel = "probable"
	LevelPossible     ConfidenceLevel = "possible"
	LevelFlagged      ConfidenceLevel = "flagged"
	LevelNotFound     ConfidenceLevel = "not_found"
)

// rank orders confidence levels from lowest to highest so customer-data
// protection can compare a proposed write against the stored level.
var levelRank = map[ConfidenceLevel]int{
	LevelNotFound:     0,
	LevelFlagged:      1,
	LevelPossible:     2,
	LevelProbable:     3,
	LevelVerified:     4,
	LevelCustomerData: 5,
}

// IsValid reports whether l is a recognized confidence level.
func (l ConfidenceLevel) IsValid() bool {
	_, ok := levelRank[l]
	return ok
}

func (l ConfidenceLevel) rank() int {
	return levelRank[l]
}

// SearchLogEntry is one append-only diagnostic trail entry attached to an
// ancestor, recording what a search step observed rather than a general
// application log.
type SearchLogEntry struct {
	Level     string    `json:"level"` // info, warn, error
	Adapter   string    `json:"adapter,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Ancestor occupies one slot (job id, ascendancy number A) in the binary
// ascendancy tree for a research job.
type Ancestor struct {
	ID               uuid.UUID       `json:"id"`
	JobID            string          `json:"job_id"`
	AscendancyNumber int             `json:"ascendancy_number"`
	Generation       int             `json:"generation"`
	GivenName        string          `json:"given_name"`
	Surname          string          `json:"surname"`
	Gender           Gender          `json:"gender"`
	BirthDate        *PartialDate    `json:"birth_date,omitempty"`
	BirthPlace       string          `json:"birth_place,omitempty"`
	DeathDate        *PartialDate    `json:"death_date,omitempty"`
	DeathPlace       string          `json:"death_place,omitempty"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
	ConfidenceScore  int             `json:"confidence_score"`
	EvidenceChain    []EvidenceRecord `json:"evidence_chain,omitempty"`
	SearchLog        []SearchLogEntry `json:"search_log,omitempty"`
	Sources          []string        `json:"sources,omitempty"`
	VerificationNotes string         `json:"verification_notes,omitempty"`
	ExternalPersonID string          `json:"external_person_id,omitempty"`
	FatherName       string          `json:"father_name,omitempty"`
	MotherName       string          `json:"mother_name,omitempty"`
	MotherMaidenSurname string       `json:"mother_maiden_surname,omitempty"`
	Version          int64           `json:"version"`
}

// Generation returns ⌊log₂ A⌋ for an ascendancy number A ≥ 1.
func Generation(a int) int {
	if a < 1 {
		return 0
	}
	return bits.Len(uint(a)) - 1
}

// ExpectedGender returns the gender A's parity determines: Male if A is
// even, Female if A is odd, for A > 1. A=1 (the subject) is not determined
// by parity and is reported Unknown here; parity only constrains A>1.
func ExpectedGender(a int) Gender {
	if a <= 1 {
		return GenderUnknown
	}
	if a%2 == 0 {
		return GenderMale
	}
	return GenderFemale
}

// IsDescendantSlot reports whether candidate occupies a slot in the
// ascendancy subtree rooted at a, including a itself: candidate =
// a*2^k + r for some k≥0 and 0≤r<2^k. Equivalently, repeatedly halving
// candidate reaches a exactly.
func IsDescendantSlot(a, candidate int) bool {
	if a <= 0 || candidate <= 0 {
		return false
	}
	for candidate >= a {
		if candidate == a {
			return true
		}
		candidate /= 2
	}
	return false
}

// NewAncestor creates an Ancestor for slot A of job jobID with no
// identification yet: confidence Not Found, score 0, gender fixed by A's
// parity.
func NewAncestor(jobID string, a int) *Ancestor {
	return &Ancestor{
		ID:               uuid.New(),
		JobID:            jobID,
		AscendancyNumber: a,
		Generation:       Generation(a),
		Gender:           ExpectedGender(a),
		ConfidenceLevel:  LevelNotFound,
		ConfidenceScore:  0,
		Version:          1,
	}
}

// AncestorValidationError represents a validation error for an Ancestor.
type AncestorValidationError struct {
	Field   string
	Message string
}

func (e AncestorValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the ancestor's structural invariants: gender parity,
// confidence score range, level validity. It does not check customer-data
// protection, a write-time invariant enforced by ApplyWrite rather than a
// standalone-value one.
func (a *Ancestor) Validate() error {
	var errs []error

	if a.AscendancyNumber < 1 {
		errs = append(errs, AncestorValidationError{Field: "ascendancy_number", Message: "must be >= 1"})
	}
	if a.AscendancyNumber > 1 {
		if want := ExpectedGender(a.AscendancyNumber); a.Gender != want && a.Gender != GenderUnknown {
			errs = append(errs, AncestorValidationError{
				Field:   "gender",
				Message: fmt.Sprintf("ascendancy number %d requires gender %s, got %s", a.AscendancyNumber, want, a.Gender),
			})
		}
	}
	if !a.ConfidenceLevel.IsValid() {
		errs = append(errs, AncestorValidationError{Field: "confidence_level", Message: fmt.Sprintf("invalid value: %s", a.ConfidenceLevel)})
	}
	if a.ConfidenceScore < 0 || a.ConfidenceScore > 100 {
		errs = append(errs, AncestorValidationError{Field: "confidence_score", Message: "must be within [0,100]"})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ErrCustomerDataProtected is returned when a write would lower a
// Customer Data ancestor's level or change its name.
var ErrCustomerDataProtected = errors.New("domain: cannot overwrite a customer-data ancestor's level or name")

// ApplyWrite merges a candidate identification into the ancestor, with
// customer data protected: once the stored level is Customer Data, the
// level and the name may
// never change, though evidence, an external id, and verification notes may
// still be added. For any other stored level, the candidate replaces the
// stored identification wholesale, level and score included, whether the
// new level is higher or lower than the stored one.
func (a *Ancestor) ApplyWrite(candidate Ancestor) error {
	if a.ConfidenceLevel == LevelCustomerData {
		if candidate.ConfidenceLevel != LevelCustomerData {
			return ErrCustomerDataProtected
		}
		if candidate.GivenName != a.GivenName || candidate.Surname != a.Surname {
			return ErrCustomerDataProtected
		}
		// Enrichment only: accumulate evidence, attach external ids, and
		// fill in dates and places the customer record left blank. The
		// candidate is always derived from the stored row, so its chain is
		// the stored chain plus any appends, never a fresh one.
		a.EvidenceChain = candidate.EvidenceChain
		a.Sources = mergeUnique(a.Sources, candidate.Sources)
		if candidate.ExternalPersonID != "" {
			a.ExternalPersonID = candidate.ExternalPersonID
		}
		if candidate.VerificationNotes != "" {
			a.VerificationNotes = candidate.VerificationNotes
		}
		if a.BirthDate == nil && candidate.BirthDate != nil {
			a.BirthDate = candidate.BirthDate
		}
		if a.BirthPlace == "" {
			a.BirthPlace = candidate.BirthPlace
		}
		if a.DeathDate == nil && candidate.DeathDate != nil {
			a.DeathDate = candidate.DeathDate
		}
		if a.DeathPlace == "" {
			a.DeathPlace = candidate.DeathPlace
		}
		a.Version++
		return nil
	}

	a.GivenName = candidate.GivenName
	a.Surname = candidate.Surname
	a.BirthDate = candidate.BirthDate
	a.BirthPlace = candidate.BirthPlace
	a.DeathDate = candidate.DeathDate
	a.DeathPlace = candidate.DeathPlace
	a.ConfidenceLevel = candidate.ConfidenceLevel
	a.ConfidenceScore = candidate.ConfidenceScore
	a.EvidenceChain = candidate.EvidenceChain
	a.Sources = candidate.Sources
	a.VerificationNotes = candidate.VerificationNotes
	a.ExternalPersonID = candidate.ExternalPersonID
	a.FatherName = candidate.FatherName
	a.MotherName = candidate.MotherName
	a.MotherMaidenSurname = candidate.MotherMaidenSurname
	a.Version++
	return nil
}

// AppendSearchLog appends a diagnostic trail entry.
func (a *Ancestor) AppendSearchLog(level, adapter, message string, at time.Time) {
	a.SearchLog = append(a.SearchLog, SearchLogEntry{
		Level:     level,
		Adapter:   adapter,
		Message:   message,
		Timestamp: at,
	})
}

func mergeUnique(existing, additions []string) []string {
	seen := make(map[string]bool, len(existing))
	out := make([]string, 0, len(existing)+len(additions))
	for _, s := range existing {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range additions {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
