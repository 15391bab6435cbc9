package notes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/cacack/ancestry-research/internal/domain"
)

func TestParseNotesEmpty(t *testing.T) {
	out := ParseNotes("   ")
	require.Empty(t, out)
}

func TestParseNotesFatherAndMother(t *testing.T) {
	out := ParseNotes("Her father was Robert Shepherd (1922-1995) and her mother was Jane Carter (1925-1998).")

	want := domain.NotesAnchorMap{
		2: {GivenName: "Robert", Surname: "Shepherd", BirthDate: "1922", DeathDate: "1995"},
		3: {GivenName: "Jane", Surname: "Carter", BirthDate: "1925", DeathDate: "1998"},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("ParseNotes() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNotesLivingParentHasNoDeathDate(t *testing.T) {
	out := ParseNotes("Her mother was Jane Carter (1925-living).")
	require.Contains(t, out, 3)
	require.Empty(t, out[3].DeathDate)
}

func TestParseNotesPaternalGrandparentPair(t *testing.T) {
	out := ParseNotes("Paternal GP: William Shepherd (1894-1960) and Ann Dyer (1896-1970).")

	require.Contains(t, out, 4)
	require.Equal(t, "William", out[4].GivenName)
	require.Equal(t, "Shepherd", out[4].Surname)

	require.Contains(t, out, 5)
	require.Equal(t, "Ann", out[5].GivenName)
	require.Equal(t, "Dyer", out[5].Surname)
}

func TestParseNotesMaternalGrandparentsFallback(t *testing.T) {
	out := ParseNotes("Her maternal grandfather was John Carter (1890-1950). Her maternal grandmother was Agnes Wren (1893-1955).")

	require.Contains(t, out, 6)
	require.Equal(t, "John", out[6].GivenName)
	require.Equal(t, "Carter", out[6].Surname)

	require.Contains(t, out, 7)
	require.Equal(t, "Agnes", out[7].GivenName)
	require.Equal(t, "Wren", out[7].Surname)
}

func TestParseNotesFillsBirthPlaceNearSurname(t *testing.T) {
	out := ParseNotes("Her father was Robert Shepherd (1922-1995), born in Exeter, Devon.")

	require.Contains(t, out, 2)
	require.NotEmpty(t, out[2].BirthPlace)
}

func TestParseNotesNoMatchLeavesMapEmpty(t *testing.T) {
	out := ParseNotes("Family moved around a lot, not much else is known.")
	require.Empty(t, out)
}
