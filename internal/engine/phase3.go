package engine

import (
	"context"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/repository"
	"github.com/cacack/ancestry-research/internal/research"
)

// pairTask is one unit of Phase 3 BFS work: the parents of childA, not yet
// known, queued together since the father must be identified before the
// mother's maiden surname can be sought.
type pairTask struct {
	fatherA, motherA, childA, generation int
}

// phase3Expand is Phase 3: BFS expansion from the known anchors (2..7)
// outward, stopping at the requested generation depth or whenever a
// target's score falls below the expansion threshold.
func (e *Engine) phase3Expand(ctx context.Context, job *domain.ResearchJob, brideMaiden map[int]string, prog *progress) error {
	var queue []pairTask
	for a := 2; a <= 7; a++ {
		gen := domain.Generation(a)
		if gen+1 > job.Generations {
			continue
		}
		child, err := e.Repo.GetAncestorByAscNumber(ctx, job.ID, a)
		if err != nil || child == nil || child.GivenName == "" {
			continue
		}
		queue = append(queue, pairTask{fatherA: 2 * a, motherA: 2*a + 1, childA: a, generation: gen + 1})
	}

	for len(queue) > 0 {
		if err := checkCancelled(ctx); err != nil {
			return err
		}
		task := queue[0]
		queue = queue[1:]

		child, err := e.Repo.GetAncestorByAscNumber(ctx, job.ID, task.childA)
		if err != nil || child == nil || child.GivenName == "" {
			continue
		}
		childYear := 0
		if child.BirthDate != nil && child.BirthDate.Year != nil {
			childYear = *child.BirthDate.Year
		}
		district := domain.ExtractDistrict(child.BirthPlace)

		prog.report(ctx, e.Repo, job.ID, "researching target")
		fatherGiven, _ := domain.ParseName(child.FatherName)
		fatherExpand, father := e.processTarget(ctx, job, targetSeed{
			A:          task.fatherA,
			Generation: task.generation,
			GivenName:  fatherGiven,
			Surname:    child.Surname,
			BirthYear:  estBirthYear(childYear, 28),
			District:   district,
		})

		motherSurname := brideMaiden[task.fatherA]
		motherGiven, motherGivenSurname := domain.ParseName(child.MotherName)
		if motherSurname == "" {
			motherSurname = motherGivenSurname
		}
		if father != nil && fatherExpand && childYear != 0 {
			if seeded := e.seedMotherSurname(ctx, father, childYear, district, motherGiven); seeded != "" {
				motherSurname = seeded
			}
		}

		prog.report(ctx, e.Repo, job.ID, "researching target")
		motherExpand, mother := e.processTarget(ctx, job, targetSeed{
			A:          task.motherA,
			Generation: task.generation,
			GivenName:  motherGiven,
			Surname:    motherSurname,
			BirthYear:  estBirthYear(childYear, 25),
			District:   district,
		})

		if fatherExpand && father != nil {
			queue = append(queue, pairTask{fatherA: 2 * task.fatherA, motherA: 2*task.fatherA + 1, childA: task.fatherA, generation: task.generation + 1})
		}
		if motherExpand && mother != nil {
			queue = append(queue, pairTask{fatherA: 2 * task.motherA, motherA: 2*task.motherA + 1, childA: task.motherA, generation: task.generation + 1})
		}
	}

	return nil
}

// seedMotherSurname finds the newly identified father's own marriage to
// resolve his wife's maiden surname, the seed for her own slot: the bride's
// maiden surname is what joins a child's birth record to the next
// generation's mother.
func (e *Engine) seedMotherSurname(ctx context.Context, father *domain.Ancestor, childBirthYear int, district, motherGiven string) string {
	primary := e.Registry.PrimaryIndex()
	if primary == nil {
		return ""
	}
	rec := research.FindParentCouple(ctx, primary, research.CoupleQuery{
		ChildBirthYear:  childBirthYear,
		District:        district,
		FatherSurname:   father.Surname,
		FatherGivenName: father.GivenName,
		MotherGivenName: motherGiven,
	})
	if rec == nil {
		return ""
	}
	_ = e.Repo.UpdateAncestorByAscNumber(ctx, father.JobID, father.AscendancyNumber, repository.AncestorPatch{
		AppendEvidence: []domain.EvidenceRecord{*rec},
	})
	return rec.BrideSurname
}
