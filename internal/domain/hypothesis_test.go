package domain

import "testing"

func TestNewHypothesis(t *testing.T) {
	h := NewHypothesis("Smith", "Jane", 1950, 2, "Derby")
	if h.Status != HypothesisOpen {
		t.Errorf("expected new hypothesis to be open, got %s", h.Status)
	}
	if h.Score != 0 {
		t.Errorf("expected new hypothesis to start at score 0, got %d", h.Score)
	}
}

func TestHypothesis_AddEvidence(t *testing.T) {
	h := NewHypothesis("Smith", "Jane", 1950, 2, "Derby")
	h.AddEvidence(NewEvidenceRecord(EvidenceBirth, "civil-index", AspectIdentity))
	h.AddEvidence(NewEvidenceRecord(EvidenceMarriage, "civil-index", AspectCouple, AspectParents))
	if h.Score != 55 {
		t.Errorf("expected score 55 (25+30), got %d", h.Score)
	}
	if len(h.EvidenceChain) != 2 {
		t.Errorf("expected 2 evidence records, got %d", len(h.EvidenceChain))
	}
}

func TestHypothesis_AttachTree(t *testing.T) {
	h := NewHypothesis("Smith", "Jane", 1950, 2, "Derby")
	h.AttachTree(TreeFacts{PersonID: "tree-1", FatherName: "John Smith"})
	if h.Tree == nil || h.Tree.PersonID != "tree-1" {
		t.Error("expected tree facts to attach")
	}
}

func TestHypothesis_DiscardAndPromote(t *testing.T) {
	h := NewHypothesis("Smith", "Jane", 1950, 2, "Derby")
	h.Promote(HypothesisPrimary)
	if h.Status != HypothesisPrimary {
		t.Errorf("expected status primary, got %s", h.Status)
	}
	h.Discard()
	if h.Status != HypothesisDiscarded {
		t.Errorf("expected status discarded, got %s", h.Status)
	}
}
