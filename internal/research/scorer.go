package research

import "github.com/cacack/ancestry-research/internal/domain"

// independentKinds are the record kinds that count as independent evidence:
// primary civil/parish registrations, never derived tree data.
var independentKinds = map[domain.EvidenceKind]bool{
	domain.EvidenceBirth:        true,
	domain.EvidenceMarriage:     true,
	domain.EvidenceDeath:        true,
	domain.EvidenceSiblingBirth: true,
}

// ScoreInput is the finalized material the confidence scorer needs:
// the evidence chain and whether a marriage was attempted but failed
// cross-check, which caps the score regardless of the chain's strength.
type ScoreInput struct {
	EvidenceChain       []domain.EvidenceRecord
	MarriageAttempted   bool
	MarriageCrossChecked bool
}

// Score computes the calibrated confidence of a finalized evidence chain
// and returns both the numeric score and its mapped confidence level.
func Score(in ScoreInput) (int, domain.ConfidenceLevel) {
	w, i, full, lite, r := tally(in.EvidenceChain)

	var score int
	switch {
	case full && r > 0:
		score = min(100, 85+min(15, w-55))
	case full || lite:
		// A full triangle without reinforcement and the birth+marriage
		// triangle-lite share a ceiling of 89: Probable, never Verified.
		score = min(89, 75+min(14, w-40))
	case i >= 2:
		score = min(74, 50+min(24, w-25))
	case i >= 1:
		score = min(49, 25+min(24, w-10))
	default:
		score = 0
	}

	if in.MarriageAttempted && !in.MarriageCrossChecked {
		score = min(score, 60)
	}

	if score < 0 {
		score = 0
	}

	return score, levelFor(score)
}


// tally computes W (weight sum), I (independent-record count), the
// birth+marriage triangle — full when a census or sibling birth supports
// the pair, lite when the two registrations stand alone — and R
// (reinforcement count) from the evidence chain.
func tally(chain []domain.EvidenceRecord) (w, i int, full, lite bool, r int) {
	var hasBirth, hasMarriage, hasSupport bool
	reinforcementKinds := map[domain.EvidenceKind]int{}

	for _, e := range chain {
		w += e.Weight
		if independentKinds[e.Kind] {
			i++
		}
		switch e.Kind {
		case domain.EvidenceBirth:
			hasBirth = true
		case domain.EvidenceMarriage:
			hasMarriage = true
		case domain.EvidenceCensus, domain.EvidenceSiblingBirth:
			hasSupport = true
		}
		reinforcementKinds[e.Kind]++
	}

	full = hasBirth && hasMarriage && hasSupport
	lite = hasBirth && hasMarriage && !hasSupport

	// R counts reinforcement hits: every sibling_birth, every census beyond
	// the first, and every death confirmation when the chain also holds a
	// marriage.
	r = reinforcementKinds[domain.EvidenceSiblingBirth]
	if reinforcementKinds[domain.EvidenceCensus] > 1 {
		r += reinforcementKinds[domain.EvidenceCensus] - 1
	}
	if reinforcementKinds[domain.EvidenceDeath] > 0 && hasMarriage {
		r += reinforcementKinds[domain.EvidenceDeath]
	}

	return w, i, full, lite, r
}

func levelFor(score int) domain.ConfidenceLevel {
	switch {
	case score >= 90:
		return domain.LevelVerified
	case score >= 75:
		return domain.LevelProbable
	case score >= 50:
		return domain.LevelPossible
	case score >= 25:
		return domain.LevelFlagged
	default:
		return domain.LevelNotFound
	}
}
