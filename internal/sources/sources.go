// Package sources defines the source registry and the uniform Adapter
// contract: per-source clients for civil-index searches, tree
// traversal, and fact extraction, plus the rate-limit/retry/breaker
// machinery every adapter is built on.
package sources

import (
	"context"

	"github.com/cacack/ancestry-research/internal/domain"
)

// BirthEntry is one hit from a primary-index birth search.
type BirthEntry struct {
	Surname             string
	Forenames           string
	Year                int
	Quarter             int
	District             string
	Volume               string
	Page                 string
	MotherMaidenSurname string
}

// MarriageEntry is one hit from a primary-index marriage search.
type MarriageEntry struct {
	GroomSurname   string
	GroomForenames string
	BrideSurname   string
	BrideForenames string
	Year           int
	Quarter        int
	District       string
	Volume         string
	Page           string
}

// DeathEntry confirms a death record.
type DeathEntry struct {
	Forenames string
	Surname   string
	Year      int
	District  string
}

// PersonSearchQuery are the fields a person-search lookup is keyed on.
type PersonSearchQuery struct {
	GivenName        string
	Surname          string
	BirthDate        string // year-only; the genealogical APIs reject other formats
	BirthPlace       string
	FatherSurname    string
	MotherSurname    string
	MotherGivenName  string
	Count            int
}

// PersonCandidate is one hit from a tree-source person search.
type PersonCandidate struct {
	PersonID    string
	GivenName   string
	Surname     string
	BirthDate   string
	BirthPlace  string
	DeathDate   string
	DeathPlace  string
	FatherName  string
	MotherName  string
}

// Parents is the result of a parent lookup on a tree-source person.
type Parents struct {
	FatherID   string
	FatherName string
	MotherID   string
	MotherName string
}

// CensusFact is a single census appearance extracted from a person's facts.
type CensusFact struct {
	Year  int
	Place string
}

// PersonFacts is everything extractFactsByType can surface for a person.
// Only census facts are consumed by the pipeline today; the map is kept open so
// an adapter may surface other fact types (e.g. residence) without
// widening the interface.
type PersonFacts struct {
	Census []CensusFact
	Other  map[string][]string
}

// Adapter is the uniform per-source client contract. Every
// method must return empty results rather than error for the absence of
// data; only non-recoverable configuration faults may return an error.
type Adapter interface {
	Name() string
	IsAvailable() bool
	Capabilities() map[domain.SourceCapability]bool

	SearchBirths(ctx context.Context, surname, given string, yearFrom, yearTo int, district string) ([]BirthEntry, error)
	SearchMarriages(ctx context.Context, surname, given string, yearFrom, yearTo int, district string) ([]MarriageEntry, error)
	ConfirmDeath(ctx context.Context, given, surname string, year int) (*DeathEntry, error)
	SearchPerson(ctx context.Context, q PersonSearchQuery) ([]PersonCandidate, error)
	GetParents(ctx context.Context, personID string) (*Parents, error)
	ExtractFacts(ctx context.Context, personID string) (*PersonFacts, error)
}

// HasCapability reports whether a, given its own Capabilities map, offers c.
func HasCapability(a Adapter, c domain.SourceCapability) bool {
	if a == nil {
		return false
	}
	return a.Capabilities()[c]
}

// Descriptor returns the domain.SourceDescriptor view of an adapter, for
// code that only needs capability/availability metadata without the full
// adapter surface (e.g. the registry's capability-filtered selection).
func Descriptor(a Adapter) domain.SourceDescriptor {
	return domain.SourceDescriptor{
		Name:         a.Name(),
		Capabilities: a.Capabilities(),
		IsAvailable:  a.IsAvailable,
	}
}
