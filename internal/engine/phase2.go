package engine

import (
	"context"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/repository"
	"github.com/cacack/ancestry-research/internal/research"
)

// couplePair is one of the three known-parent pairs Phase 2 confirms: the
// couple at (fatherA, motherA) are the parents of childA.
type couplePair struct {
	fatherA, motherA, childA int
}

var phase2Pairs = []couplePair{
	{fatherA: 2, motherA: 3, childA: 1},
	{fatherA: 4, motherA: 5, childA: 2},
	{fatherA: 6, motherA: 7, childA: 3},
}

// phase2CoupleMarriages is Phase 2: confirming the marriage of
// each known couple pair and returning the confirmed bride-maiden surname
// keyed by the couple's father-slot ascendancy number, the seed Phase 3
// uses for the corresponding mother target.
func (e *Engine) phase2CoupleMarriages(ctx context.Context, job *domain.ResearchJob, prog *progress) (map[int]string, error) {
	brideMaiden := make(map[int]string)
	primary := e.Registry.PrimaryIndex()

	for _, pair := range phase2Pairs {
		if err := checkCancelled(ctx); err != nil {
			return nil, err
		}
		father, ferr := e.Repo.GetAncestorByAscNumber(ctx, job.ID, pair.fatherA)
		mother, merr := e.Repo.GetAncestorByAscNumber(ctx, job.ID, pair.motherA)
		if ferr != nil || merr != nil || father == nil || mother == nil || father.GivenName == "" || mother.GivenName == "" {
			continue
		}
		prog.report(ctx, e.Repo, job.ID, "confirming couple marriage")

		child, _ := e.Repo.GetAncestorByAscNumber(ctx, job.ID, pair.childA)
		childBirthYear := 0
		district := ""
		if child != nil {
			if child.BirthDate != nil && child.BirthDate.Year != nil {
				childBirthYear = *child.BirthDate.Year
			}
			district = domain.ExtractDistrict(child.BirthPlace)
		}
		if childBirthYear == 0 {
			continue
		}

		rec := research.FindParentCouple(ctx, primary, research.CoupleQuery{
			ChildBirthYear:      childBirthYear,
			District:            district,
			FatherSurname:       father.Surname,
			FatherGivenName:     father.GivenName,
			MotherMaidenSurname: mother.Surname,
			MotherGivenName:     mother.GivenName,
		})
		if rec == nil {
			continue
		}

		_ = e.Repo.UpdateAncestorByAscNumber(ctx, job.ID, pair.fatherA, repository.AncestorPatch{AppendEvidence: []domain.EvidenceRecord{*rec}})
		_ = e.Repo.UpdateAncestorByAscNumber(ctx, job.ID, pair.motherA, repository.AncestorPatch{AppendEvidence: []domain.EvidenceRecord{*rec}})

		if rec.BrideSurname != "" {
			brideMaiden[pair.fatherA] = rec.BrideSurname
		}
	}

	return brideMaiden, nil
}
