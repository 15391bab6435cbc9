package research

import (
	"github.com/cacack/ancestry-research/internal/domain"
)

// CrossCheckInput is the birth/marriage data Step 4 compares.
type CrossCheckInput struct {
	BirthSurname        string
	BirthDistrict       string
	BirthMotherMaiden   string
	MarriageGroomSurname string
	MarriageBrideSurname string
	MarriageDistrict     string
	MarriageYear          int
	BirthYear             int
}

// CrossCheckResult is Step 4's outcome: a score and the verified verdict
// (verified iff score >= 25).
type CrossCheckResult struct {
	Score    int
	Verified bool
}

// CrossCheck implements Step 4: verifying birth-vs-marriage consistency.
func CrossCheck(in CrossCheckInput) CrossCheckResult {
	score := 0

	if equalFold(in.BirthSurname, in.MarriageGroomSurname) {
		score += 15
	}
	if equalFold(in.BirthMotherMaiden, in.MarriageBrideSurname) {
		score += 15
	}

	switch {
	case in.BirthDistrict != "" && equalFold(in.BirthDistrict, in.MarriageDistrict):
		score += 10
	case in.BirthDistrict != "" && domain.DistrictsSimilar(in.BirthDistrict, in.MarriageDistrict):
		score += 5
	}

	gap := in.MarriageYear - in.BirthYear
	if gap >= 0 && gap <= 15 {
		score += 10
	}

	return CrossCheckResult{Score: score, Verified: score >= 25}
}
