package domain

// EvidenceKind is the record type an EvidenceRecord was derived from.
type EvidenceKind string

const (
	EvidenceBirth        EvidenceKind = "birth"
	EvidenceMarriage     EvidenceKind = "marriage"
	EvidenceDeath        EvidenceKind = "death"
	EvidenceCensus       EvidenceKind = "census"
	EvidenceSiblingBirth EvidenceKind = "sibling_birth"
	EvidenceTreeLead     EvidenceKind = "tree_lead"
)

// EvidenceAspect is a facet of an identification that an EvidenceRecord can
// support.
type EvidenceAspect string

const (
	AspectIdentity EvidenceAspect = "identity"
	AspectParents  EvidenceAspect = "parents"
	AspectLocation EvidenceAspect = "location"
	AspectCouple   EvidenceAspect = "couple"
)

// evidenceWeights are the fixed per-kind weights used by the confidence
// scorer. Independence is intrinsic to the kind, not the outcome: a
// tree_lead record is never independent, everything else is.
// Census defaults to the child-window (0-15) hit weight; a reinforcement
// (second) census carries weight 10 and callers override it explicitly
// A variant-surname birth hit likewise overrides the default 25
// down to 20 after NewEvidenceRecord constructs it.
var evidenceWeights = map[EvidenceKind]int{
	EvidenceBirth:        25,
	EvidenceMarriage:     30,
	EvidenceDeath:        10,
	EvidenceCensus:       15,
	EvidenceSiblingBirth: 15,
	EvidenceTreeLead:     10,
}

// EvidenceRecord is one item in an ancestor's evidence chain: a single
// record surfaced by a source adapter and the aspects of the identification
// it supports.
type EvidenceRecord struct {
	Kind        EvidenceKind     `json:"kind"`
	SourceName  string           `json:"source_name"`
	Independent bool             `json:"independent"`
	Year        int              `json:"year,omitempty"`
	Quarter     int              `json:"quarter,omitempty"`
	District    string           `json:"district,omitempty"`
	Volume      string           `json:"volume,omitempty"`
	Page        string           `json:"page,omitempty"`
	Place       string           `json:"place,omitempty"`
	Details     string           `json:"details,omitempty"`
	// GroomSurname and BrideSurname are populated only on marriage records;
	// BrideSurname is the seed a couple's marriage contributes to the
	// mother slot of the next generation.
	GroomSurname string `json:"groom_surname,omitempty"`
	BrideSurname string `json:"bride_surname,omitempty"`
	Aspects     []EvidenceAspect `json:"aspects,omitempty"`
	Weight      int              `json:"weight"`
}

// NewEvidenceRecord builds an EvidenceRecord with its weight and
// independence flag fixed by kind.
func NewEvidenceRecord(kind EvidenceKind, sourceName string, aspects ...EvidenceAspect) EvidenceRecord {
	return EvidenceRecord{
		Kind:        kind,
		SourceName:  sourceName,
		Independent: kind != EvidenceTreeLead,
		Aspects:     aspects,
		Weight:      evidenceWeights[kind],
	}
}

// Supports reports whether the record supports the given aspect of an
// identification.
func (r EvidenceRecord) Supports(aspect EvidenceAspect) bool {
	for _, a := range r.Aspects {
		if a == aspect {
			return true
		}
	}
	return false
}

// SameCoordinates reports whether two marriage records describe the same
// registration event: identical year, volume, and page. A marriage shared
// by a couple's two parent slots must cite the same coordinates.
func (r EvidenceRecord) SameCoordinates(other EvidenceRecord) bool {
	return r.Year == other.Year && r.Volume == other.Volume && r.Page == other.Page
}

// SourceCapability is a function an adapter is able to perform.
type SourceCapability string

const (
	CapabilitySearchPrimary SourceCapability = "search_primary"
	CapabilityConfirmation  SourceCapability = "confirmation"
	CapabilityTreeTraversal SourceCapability = "tree_traversal"
	CapabilityPersonSearch  SourceCapability = "person_search"
)

// SourceDescriptor is a registered external source: a name, the
// capabilities it offers, and whether it is currently usable.
type SourceDescriptor struct {
	Name         string
	Capabilities map[SourceCapability]bool
	// IsAvailable reports whether the source can currently be used. It is
	// distinct from "configured": a configured source can still be
	// unavailable at runtime (e.g. tripped circuit breaker).
	IsAvailable func() bool
}

// HasCapability reports whether the source offers the given capability.
func (d SourceDescriptor) HasCapability(c SourceCapability) bool {
	return d.Capabilities[c]
}

// Available reports the source's current availability, treating a nil
// predicate as always available.
func (d SourceDescriptor) Available() bool {
	if d.IsAvailable == nil {
		return true
	}
	return d.IsAvailable()
}
