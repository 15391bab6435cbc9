// Package gedcomlink hands a finalized ancestor set off to the gedcom-go
// in-memory document model, the typed graph the (out-of-scope) GEDCOM
// export renderer consumes. Ancestor rows are first lifted into the
// Person/Family hand-off shapes, then lowered into gedcom records; the
// engine's obligation stops at this hand-off, and rendering the document
// to a .ged file is the export renderer's job.
package gedcomlink

import (
	"fmt"
	"strconv"

	"github.com/cacack/gedcom-go/gedcom"

	"github.com/cacack/ancestry-research/internal/domain"
)

// BuildDocument translates every ancestor row in a job's finalized
// ascendancy tree into a gedcom.Document: one Individual record per
// identified ancestor, and one Family record per parent couple (2A, 2A+1)
// with at least one identified member.
func BuildDocument(ancestors []*domain.Ancestor) *gedcom.Document {
	doc := &gedcom.Document{
		Records: make([]*gedcom.Record, 0, len(ancestors)),
		XRefMap: make(map[string]*gedcom.Record),
	}

	persons := make(map[int]*domain.Person, len(ancestors))
	byA := make(map[int]*domain.Ancestor, len(ancestors))
	for _, a := range ancestors {
		byA[a.AscendancyNumber] = a
		if a.GivenName == "" && a.Surname == "" {
			continue // Not Found placeholder: no individual to export
		}
		persons[a.AscendancyNumber] = ancestorToPerson(a)
	}

	for _, a := range ancestors {
		p, ok := persons[a.AscendancyNumber]
		if !ok {
			continue
		}
		xref := individualXRef(a.AscendancyNumber)
		record := &gedcom.Record{
			XRef:   xref,
			Type:   gedcom.RecordTypeIndividual,
			Entity: personToIndividual(p, xref),
		}
		doc.Records = append(doc.Records, record)
		doc.XRefMap[xref] = record
	}

	for _, child := range ancestors {
		if _, ok := persons[child.AscendancyNumber]; !ok {
			continue
		}
		fatherA, motherA := 2*child.AscendancyNumber, 2*child.AscendancyNumber+1
		father, hasFather := persons[fatherA]
		mother, hasMother := persons[motherA]
		if !hasFather && !hasMother {
			continue
		}

		fam := coupleFamily(father, mother, marriageEvidence(byA, fatherA, motherA))
		xref := familyXRef(child.AscendancyNumber)
		record := &gedcom.Record{
			XRef:   xref,
			Type:   gedcom.RecordTypeFamily,
			Entity: familyToGedcomFamily(fam, xref, fatherA, motherA, child.AscendancyNumber, hasFather, hasMother),
		}
		doc.Records = append(doc.Records, record)
		doc.XRefMap[xref] = record
	}

	return doc
}

// ancestorToPerson lifts a finalized Ancestor into the Person hand-off
// shape: research state (evidence chain, search log, confidence) stays
// behind; only the identification itself travels.
func ancestorToPerson(a *domain.Ancestor) *domain.Person {
	p := domain.NewPerson(a.GivenName, a.Surname)
	p.Gender = a.Gender
	p.BirthPlace = a.BirthPlace
	p.DeathPlace = a.DeathPlace
	p.GedcomXref = individualXRef(a.AscendancyNumber)
	if a.BirthDate != nil && !a.BirthDate.IsZero() {
		p.BirthDate = genDateOf(*a.BirthDate)
	}
	if a.DeathDate != nil && !a.DeathDate.IsZero() {
		p.DeathDate = genDateOf(*a.DeathDate)
	}
	if a.VerificationNotes != "" {
		p.Notes = a.VerificationNotes
	}
	return p
}

// coupleFamily builds the Family hand-off for a parent couple, sourcing
// the marriage event from the couple's shared marriage evidence record
// when one exists.
func coupleFamily(father, mother *domain.Person, marriage *domain.EvidenceRecord) *domain.Family {
	p1, p2 := father, mother

	var fam *domain.Family
	switch {
	case p1 != nil && p2 != nil:
		fam = domain.NewFamilyWithPartners(&p1.ID, &p2.ID)
	case p1 != nil:
		fam = domain.NewFamilyWithPartners(&p1.ID, nil)
	default:
		fam = domain.NewFamilyWithPartners(nil, &p2.ID)
	}
	fam.RelationshipType = domain.RelationMarriage

	if marriage != nil {
		if marriage.Year != 0 {
			fam.SetMarriageDate(strconv.Itoa(marriage.Year))
		}
		fam.MarriagePlace = marriage.District
	}
	return fam
}

func personToIndividual(p *domain.Person, xref string) *gedcom.Individual {
	indi := &gedcom.Individual{
		XRef:   xref,
		Events: make([]*gedcom.Event, 0, 2),
	}

	if p.GivenName != "" || p.Surname != "" {
		name := &gedcom.PersonalName{Given: p.GivenName, Surname: p.Surname}
		if p.Surname != "" {
			name.Full = p.GivenName + " /" + p.Surname + "/"
		} else {
			name.Full = p.GivenName
		}
		indi.Names = []*gedcom.PersonalName{name}
	}

	switch p.Gender {
	case domain.GenderMale:
		indi.Sex = "M"
	case domain.GenderFemale:
		indi.Sex = "F"
	default:
		indi.Sex = "U"
	}

	if p.BirthDate != nil && !p.BirthDate.IsEmpty() {
		indi.Events = append(indi.Events, dateEvent(gedcom.EventBirth, *p.BirthDate, p.BirthPlace))
	}
	if p.DeathDate != nil && !p.DeathDate.IsEmpty() {
		indi.Events = append(indi.Events, dateEvent(gedcom.EventDeath, *p.DeathDate, p.DeathPlace))
	}

	return indi
}

func familyToGedcomFamily(fam *domain.Family, xref string, fatherA, motherA, childA int, hasFather, hasMother bool) *gedcom.Family {
	out := &gedcom.Family{
		XRef:     xref,
		Events:   make([]*gedcom.Event, 0, 1),
		Children: []string{individualXRef(childA)},
	}
	if hasFather {
		out.Husband = individualXRef(fatherA)
	}
	if hasMother {
		out.Wife = individualXRef(motherA)
	}
	if fam.MarriageDate != nil || fam.MarriagePlace != "" {
		evt := &gedcom.Event{Type: gedcom.EventMarriage, Place: fam.MarriagePlace}
		if fam.MarriageDate != nil {
			evt.Date = fam.MarriageDate.Format()
		}
		out.Events = append(out.Events, evt)
	}
	return out
}

func dateEvent(kind gedcom.EventType, gd domain.GenDate, place string) *gedcom.Event {
	return &gedcom.Event{
		Type:  kind,
		Date:  gd.Format(),
		Place: place,
		ParsedDate: &gedcom.Date{
			Original: gd.Format(),
			Year:     yearOf(gd.Year),
			Month:    monthOf(gd.Month),
			Day:      dayOf(gd.Day),
		},
	}
}

func genDateOf(d domain.PartialDate) *domain.GenDate {
	return &domain.GenDate{
		Raw:       d.Raw,
		Qualifier: domain.DateExact,
		Year:      d.Year,
		Month:     d.Month,
		Day:       d.Day,
	}
}

// marriageEvidence finds the couple's shared marriage evidence record
// (identical coordinates on both spouses by construction) to source the
// family event, preferring the father's copy of the chain.
func marriageEvidence(byA map[int]*domain.Ancestor, fatherA, motherA int) *domain.EvidenceRecord {
	for _, a := range []int{fatherA, motherA} {
		anc, ok := byA[a]
		if !ok {
			continue
		}
		for _, rec := range anc.EvidenceChain {
			if rec.Kind == domain.EvidenceMarriage {
				r := rec
				return &r
			}
		}
	}
	return nil
}

func individualXRef(a int) string { return fmt.Sprintf("@I%d@", a) }
func familyXRef(a int) string     { return fmt.Sprintf("@F%d@", a) }

func yearOf(y *int) int {
	if y == nil {
		return 0
	}
	return *y
}
func monthOf(m *int) int {
	if m == nil {
		return 0
	}
	return *m
}
func dayOf(d *int) int {
	if d == nil {
		return 0
	}
	return *d
}
