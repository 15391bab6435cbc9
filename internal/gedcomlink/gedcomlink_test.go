package gedcomlink

import (
	"testing"

	"github.com/cacack/gedcom-go/gedcom"
	"github.com/stretchr/testify/require"

	"github.com/cacack/ancestry-research/internal/domain"
)

func ancestor(a int, given, surname string, birthYear int) *domain.Ancestor {
	row := domain.NewAncestor("job-1", a)
	row.GivenName = given
	row.Surname = surname
	if birthYear != 0 {
		row.BirthDate = &domain.PartialDate{Year: &birthYear}
	}
	return row
}

func TestBuildDocumentLinksCoupleToChild(t *testing.T) {
	child := ancestor(1, "Alice", "Shepherd", 1950)
	father := ancestor(2, "Robert", "Shepherd", 1922)
	mother := ancestor(3, "Jane", "Carter", 1925)

	marriage := domain.NewEvidenceRecord(domain.EvidenceMarriage, "civil-index", domain.AspectCouple)
	marriage.Year = 1948
	marriage.District = "Derby"
	father.EvidenceChain = []domain.EvidenceRecord{marriage}
	mother.EvidenceChain = []domain.EvidenceRecord{marriage}

	doc := BuildDocument([]*domain.Ancestor{child, father, mother})

	// 3 individuals + 1 family for the (2,3)->1 couple.
	require.Len(t, doc.Records, 4)

	indi, ok := doc.XRefMap["@I1@"]
	require.True(t, ok)
	require.Equal(t, gedcom.RecordTypeIndividual, indi.Type)
	person := indi.Entity.(*gedcom.Individual)
	require.Equal(t, "Alice /Shepherd/", person.Names[0].Full)
	require.Len(t, person.Events, 1)
	require.Equal(t, "1950", person.Events[0].Date)

	famRec, ok := doc.XRefMap["@F1@"]
	require.True(t, ok)
	fam := famRec.Entity.(*gedcom.Family)
	require.Equal(t, "@I2@", fam.Husband)
	require.Equal(t, "@I3@", fam.Wife)
	require.Equal(t, []string{"@I1@"}, fam.Children)
	require.Len(t, fam.Events, 1)
	require.Equal(t, "Derby", fam.Events[0].Place)
}

func TestBuildDocumentSkipsNotFoundPlaceholders(t *testing.T) {
	child := ancestor(1, "Alice", "Shepherd", 1950)
	placeholder := domain.NewAncestor("job-1", 2) // no name: Not Found placeholder

	doc := BuildDocument([]*domain.Ancestor{child, placeholder})

	require.Len(t, doc.Records, 1)
	_, hasPlaceholder := doc.XRefMap["@I2@"]
	require.False(t, hasPlaceholder)
	_, hasFamily := doc.XRefMap["@F1@"]
	require.False(t, hasFamily)
}

func TestBuildDocumentSingleKnownParent(t *testing.T) {
	child := ancestor(1, "Alice", "Shepherd", 1950)
	father := ancestor(2, "Robert", "Shepherd", 1922)

	doc := BuildDocument([]*domain.Ancestor{child, father})

	famRec, ok := doc.XRefMap["@F1@"]
	require.True(t, ok)
	fam := famRec.Entity.(*gedcom.Family)
	require.Equal(t, "@I2@", fam.Husband)
	require.Empty(t, fam.Wife)
}
