package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/repository"
	"github.com/cacack/ancestry-research/internal/research"
	"github.com/cacack/ancestry-research/internal/sources"
	"github.com/cacack/ancestry-research/internal/sources/queue"
)

// targetSeed is what Phase 3 knows about an ascendancy-number slot before
// it has been researched: a surname to search under (for a father, the
// child's surname; for a mother, the Phase 2 bride-maiden surname, else the
// surname in the child's recorded mother name, else one taken from the
// father's parents' marriage; it may be empty), an optional given name
// parsed from the child's recorded father or mother name, and an estimated
// birth year.
type targetSeed struct {
	A          int
	Generation int
	GivenName  string
	Surname    string
	BirthYear  int
	District   string
}

// processTarget runs Steps 1-5 for one ascendancy number and persists the
// result, honoring customer-data protection. It reports whether the target
// reached the score≥50 expansion threshold, and the ancestor row it found
// or wrote whatever the score; the row is nil when nothing was identified
// (a Not Found placeholder or a failed write).
func (e *Engine) processTarget(ctx context.Context, job *domain.ResearchJob, seed targetSeed) (expand bool, result *domain.Ancestor) {
	if seed.Generation > job.Generations {
		return false, nil
	}
	if existing, err := e.Repo.GetAncestorByAscNumber(ctx, job.ID, seed.A); err == nil && existing != nil && existing.GivenName != "" {
		// Already populated by an earlier phase (a customer-data anchor or a
		// prior re-research pass); never overwrite, just report whether it
		// still clears the expansion threshold.
		return existing.ConfidenceScore >= 50, existing
	}
	if seed.Surname == "" && seed.GivenName == "" {
		return false, nil
	}
	if strings.Contains(seed.GivenName, "(not found)") || strings.Contains(seed.Surname, "(not found)") {
		return false, nil
	}

	primary := e.Registry.PrimaryIndex()
	treeSource := e.Registry.TreeSource()

	if primary == nil {
		return e.tryTreeLeadFallback(ctx, job, seed)
	}

	hyps := research.BuildHypotheses(ctx, primary, research.PersonInfo{
		GivenName:  seed.GivenName,
		Surname:    seed.Surname,
		BirthYear:  seed.BirthYear,
		BirthPlace: seed.District,
	})
	if len(hyps) == 0 {
		return e.tryTreeLeadFallback(ctx, job, seed)
	}
	e.persistSearchCandidates(ctx, job.ID, seed.A, hyps)
	h := hyps[0]

	if treeSource != nil {
		research.ResolveHousehold(ctx, treeSource, h, e.rejectedIDs(ctx, job.ID))
	}

	chain := birthEvidenceChain(h, primary.Name())

	marriageVerified := false
	marriageAttempted := false
	if h.BirthYear != 0 {
		// Step 3: find THIS target's own parents' marriage, supporting the
		// target's "parents" aspect. h.Surname = h's father's surname
		// (patrilineal descent); the father's and mother's given names, if
		// known at all, only come from a tree lead on h itself.
		var fatherGiven, motherGiven string
		if h.Tree != nil {
			fatherGiven, _ = domain.ParseName(h.Tree.FatherName)
			motherGiven, _ = domain.ParseName(h.Tree.MotherName)
		}
		marriage := research.FindParentCouple(ctx, primary, research.CoupleQuery{
			ChildBirthYear:      h.BirthYear,
			District:            h.District,
			FatherSurname:       h.Surname,
			FatherGivenName:     fatherGiven,
			MotherMaidenSurname: h.MotherMaidenSurname,
			MotherGivenName:     motherGiven,
		})
		if marriage != nil {
			marriageAttempted = true
			chain = append(chain, *marriage)
			verdict := research.CrossCheck(research.CrossCheckInput{
				BirthSurname:         h.Surname,
				BirthDistrict:        h.District,
				BirthMotherMaiden:    h.MotherMaidenSurname,
				MarriageGroomSurname: marriage.GroomSurname,
				MarriageBrideSurname: marriage.BrideSurname,
				MarriageDistrict:     marriage.District,
				MarriageYear:         marriage.Year,
				BirthYear:            h.BirthYear,
			})
			marriageVerified = verdict.Verified
		}
	}

	chain = append(chain, e.reinforcementEvidence(ctx, h, chain)...)

	score, level := research.Score(research.ScoreInput{
		EvidenceChain:        chain,
		MarriageAttempted:    marriageAttempted,
		MarriageCrossChecked: marriageVerified,
	})

	row := domain.NewAncestor(job.ID, seed.A)
	row.GivenName = h.Forenames
	row.Surname = h.Surname
	row.BirthDate = &domain.PartialDate{Year: &h.BirthYear}
	row.BirthPlace = h.District
	row.MotherMaidenSurname = h.MotherMaidenSurname
	row.ConfidenceLevel = level
	row.ConfidenceScore = score
	row.EvidenceChain = chain
	if h.Tree != nil {
		row.ExternalPersonID = h.Tree.PersonID
		row.FatherName = h.Tree.FatherName
		row.MotherName = h.Tree.MotherName
	}
	row.AppendSearchLog("info", primary.Name(), "target processed", time.Now())

	if err := e.persist(ctx, job.ID, seed.A, row); err != nil {
		e.Logger.Printf("research job %s: persist A=%d: %v", job.ID, seed.A, err)
		return false, nil
	}

	return score >= 50, row
}

// birthEvidenceChain builds the initial evidence chain from a hypothesis's
// birth hit and anything the household resolver already attached (census).
// A birth hit found under a surname variant carries a discounted weight.
func birthEvidenceChain(h *domain.Hypothesis, sourceName string) []domain.EvidenceRecord {
	chain := append([]domain.EvidenceRecord(nil), h.EvidenceChain...)
	rec := domain.NewEvidenceRecord(domain.EvidenceBirth, sourceName, domain.AspectIdentity, domain.AspectParents)
	rec.Year = h.BirthYear
	rec.Quarter = h.Quarter
	rec.District = h.District
	rec.Volume = h.Volume
	rec.Page = h.Page
	if h.FromSurnameVariant {
		rec.Weight = 20
	}
	return append(chain, rec)
}

// reinforcementEvidence implements Step 5: sibling, death, and
// second-census reinforcement, attempted only once the identity has an
// initial birth hit to reinforce.
func (e *Engine) reinforcementEvidence(ctx context.Context, h *domain.Hypothesis, chain []domain.EvidenceRecord) []domain.EvidenceRecord {
	if h.BirthYear == 0 {
		return nil
	}
	primary := e.Registry.PrimaryIndex()
	var out []domain.EvidenceRecord

	in := research.ReinforcementInput{
		GivenName:           h.Forenames,
		Surname:             h.Surname,
		MotherMaidenSurname: h.MotherMaidenSurname,
		District:            h.District,
		BirthYear:           h.BirthYear,
		BirthQuarter:        h.Quarter,
	}
	if rec := research.FindSiblingBirth(ctx, primary, in); rec != nil {
		out = append(out, *rec)
	}

	if h.Tree != nil {
		in.TreePersonID = h.Tree.PersonID
		var censusYears []int
		for _, r := range chain {
			if r.Kind == domain.EvidenceCensus {
				censusYears = append(censusYears, r.Year)
			}
		}
		in.ExistingCensusYears = censusYears
		if rec := research.FindSecondCensus(ctx, e.Registry.TreeSource(), in); rec != nil {
			out = append(out, *rec)
		}
	}

	if confirmer := e.Registry.ConfirmationSource(); confirmer != nil && h.Tree != nil && h.Tree.DeathDate != "" {
		if year, ok := parseLeadingYearOf(h.Tree.DeathDate); ok {
			in.DeathYear = year
			if rec := research.ConfirmDeathReinforcement(ctx, confirmer, in); rec != nil {
				out = append(out, *rec)
			}
		}
	}

	return out
}

// tryTreeLeadFallback implements the no-primary-index degraded mode: a
// person-search-only identification capped at Flagged.
func (e *Engine) tryTreeLeadFallback(ctx context.Context, job *domain.ResearchJob, seed targetSeed) (bool, *domain.Ancestor) {
	tree := e.Registry.TreeSource()
	if tree == nil {
		return e.writeNotFound(ctx, job, seed), nil
	}

	candidates, err := tree.SearchPerson(ctx, sources.PersonSearchQuery{
		GivenName: seed.GivenName,
		Surname:   seed.Surname,
		BirthDate: yearOnlyOf(&domain.PartialDate{Year: &seed.BirthYear}),
		Count:     10,
	})
	if err != nil || len(candidates) == 0 {
		return e.writeNotFound(ctx, job, seed), nil
	}

	var best sources.PersonCandidate
	bestScore := -1
	for _, c := range candidates {
		if domain.IsNonUKPlace(c.BirthPlace) && !domain.IsUKPlace(c.BirthPlace) {
			continue
		}
		score := 0
		if domain.NamesSimilar(seed.GivenName, c.GivenName) {
			score += 20
		}
		if cy, ok := parseLeadingYearOf(c.BirthDate); ok && seed.BirthYear != 0 {
			diff := abs(seed.BirthYear - cy)
			if diff <= 2 {
				score += 20
			} else if diff <= 5 {
				score += 10
			}
		}
		if equalFoldOf(domain.ExtractDistrict(c.BirthPlace), seed.District) && seed.District != "" {
			score += 15
		}
		if score > bestScore {
			bestScore, best = score, c
		}
	}

	if bestScore < 25 {
		return e.writeNotFound(ctx, job, seed), nil
	}

	row := domain.NewAncestor(job.ID, seed.A)
	row.GivenName = best.GivenName
	row.Surname = best.Surname
	row.BirthPlace = best.BirthPlace
	row.ConfidenceLevel = domain.LevelFlagged
	row.ConfidenceScore = min(49, 25+bestScore)
	rec := domain.NewEvidenceRecord(domain.EvidenceTreeLead, tree.Name(), domain.AspectIdentity)
	rec.Details = best.GivenName + " " + best.Surname
	row.EvidenceChain = []domain.EvidenceRecord{rec}
	row.ExternalPersonID = best.PersonID
	row.FatherName = best.FatherName
	row.MotherName = best.MotherName

	if err := e.persist(ctx, job.ID, seed.A, row); err != nil {
		return false, nil
	}
	return row.ConfidenceScore >= 50, row
}

// writeNotFound implements the no-sources-at-all degraded mode: a
// placeholder row so every attempted slot has a stored outcome.
func (e *Engine) writeNotFound(ctx context.Context, job *domain.ResearchJob, seed targetSeed) bool {
	row := domain.NewAncestor(job.ID, seed.A)
	row.Surname = seed.Surname
	_ = e.persist(ctx, job.ID, seed.A, row)
	return false
}

// persistSearchCandidates writes the ranked birth hypotheses as inspection
// candidates, capped to the top 15 by score; BuildHypotheses already
// returns them sorted descending.
func (e *Engine) persistSearchCandidates(ctx context.Context, jobID string, a int, hyps []*domain.Hypothesis) {
	_ = e.Repo.DeleteSearchCandidates(ctx, jobID)
	limit := len(hyps)
	if limit > 15 {
		limit = 15
	}
	for rank, h := range hyps[:limit] {
		cand := repository.SearchCandidate{
			ID:               uuid.New(),
			JobID:            jobID,
			AscendancyNumber: a,
			Rank:             rank + 1,
			Surname:          h.Surname,
			Forenames:        h.Forenames,
			BirthYear:        h.BirthYear,
			Quarter:          h.Quarter,
			District:         h.District,
			Volume:           h.Volume,
			Page:             h.Page,
			Score:            h.Score,
		}
		if err := e.Repo.AddSearchCandidate(ctx, cand); err != nil {
			e.Logger.Printf("research job %s: persist search candidate A=%d rank=%d: %v", jobID, a, rank+1, err)
		}
	}
}

func (e *Engine) persist(ctx context.Context, jobID string, a int, row *domain.Ancestor) error {
	existing, err := e.Repo.GetAncestorByAscNumber(ctx, jobID, a)
	var err2 error
	if err != nil || existing == nil {
		err2 = e.Repo.AddAncestor(ctx, row)
	} else {
		level := row.ConfidenceLevel
		score := row.ConfidenceScore
		given := row.GivenName
		surname := row.Surname
		err2 = e.Repo.UpdateAncestorByAscNumber(ctx, jobID, a, repository.AncestorPatch{
			GivenName:           &given,
			Surname:             &surname,
			BirthDate:           row.BirthDate,
			BirthPlace:          &row.BirthPlace,
			ConfidenceLevel:     &level,
			ConfidenceScore:     &score,
			EvidenceChain:       row.EvidenceChain,
			ExternalPersonID:    &row.ExternalPersonID,
			FatherName:          &row.FatherName,
			MotherName:          &row.MotherName,
			MotherMaidenSurname: &row.MotherMaidenSurname,
		})
	}
	if err2 == nil && e.Notifier != nil {
		e.Notifier.Publish(ctx, queue.AncestorFinalized{
			JobID:            jobID,
			AscendancyNumber: a,
			ConfidenceLevel:  string(row.ConfidenceLevel),
			ConfidenceScore:  row.ConfidenceScore,
			FinalizedAt:      time.Now(),
		})
	}
	return err2
}

func (e *Engine) rejectedIDs(ctx context.Context, jobID string) map[string]bool {
	ids, err := e.Repo.GetRejectedFsIDs(ctx, jobID)
	if err != nil {
		return nil
	}
	return ids
}

func estBirthYear(childYear, offset int) int {
	if childYear == 0 {
		return 0
	}
	return childYear - offset
}

func parseLeadingYearOf(s string) (int, bool) {
	d, ok := domain.ParsePartialDate(s)
	if !ok || d.Year == nil {
		return 0, false
	}
	return *d.Year, true
}

func equalFoldOf(a, b string) bool {
	return strings.EqualFold(a, b)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
