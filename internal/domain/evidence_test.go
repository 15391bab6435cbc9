package domain

import "testing"

func TestNewEvidenceRecord(t *testing.T) {
	r := NewEvidenceRecord(EvidenceBirth, "civil-index", AspectIdentity, AspectParents)
	if !r.Independent {
		t.Error("expected a birth record to be independent")
	}
	if r.Weight != 25 {
		t.Errorf("expected birth weight 25, got %d", r.Weight)
	}
	if !r.Supports(AspectParents) {
		t.Error("expected record to support the parents aspect")
	}
	if r.Supports(AspectCouple) {
		t.Error("did not expect record to support the couple aspect")
	}
}

func TestNewEvidenceRecord_TreeLeadIsNeverIndependent(t *testing.T) {
	r := NewEvidenceRecord(EvidenceTreeLead, "family-tree", AspectIdentity)
	if r.Independent {
		t.Error("expected a tree_lead record to never be independent")
	}
	if r.Weight != 10 {
		t.Errorf("expected tree_lead weight 10, got %d", r.Weight)
	}
}

func TestEvidenceRecord_SameCoordinates(t *testing.T) {
	a := EvidenceRecord{Year: 1948, Volume: "6a", Page: "123"}
	b := EvidenceRecord{Year: 1948, Volume: "6a", Page: "123"}
	c := EvidenceRecord{Year: 1948, Volume: "6a", Page: "124"}
	if !a.SameCoordinates(b) {
		t.Error("expected identical coordinates to match")
	}
	if a.SameCoordinates(c) {
		t.Error("expected differing page to not match")
	}
}

func TestSourceDescriptor_Available(t *testing.T) {
	always := SourceDescriptor{Name: "civil-index"}
	if !always.Available() {
		t.Error("expected nil predicate to default available")
	}

	tripped := SourceDescriptor{
		Name:        "family-tree",
		IsAvailable: func() bool { return false },
	}
	if tripped.Available() {
		t.Error("expected predicate to report unavailable")
	}
}

func TestSourceDescriptor_HasCapability(t *testing.T) {
	d := SourceDescriptor{
		Name: "civil-index",
		Capabilities: map[SourceCapability]bool{
			CapabilitySearchPrimary: true,
		},
	}
	if !d.HasCapability(CapabilitySearchPrimary) {
		t.Error("expected search_primary capability")
	}
	if d.HasCapability(CapabilityTreeTraversal) {
		t.Error("did not expect tree_traversal capability")
	}
}
