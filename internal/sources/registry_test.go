package sources_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cacack/ancestry-research/internal/domain"
	"github.com/cacack/ancestry-research/internal/sources"
)

type stubAdapter struct {
	name      string
	available bool
	caps      map[domain.SourceCapability]bool
}

func (s *stubAdapter) Name() string                                   { return s.name }
func (s *stubAdapter) IsAvailable() bool                              { return s.available }
func (s *stubAdapter) Capabilities() map[domain.SourceCapability]bool { return s.caps }
func (s *stubAdapter) SearchBirths(context.Context, string, string, int, int, string) ([]sources.BirthEntry, error) {
	return nil, nil
}
func (s *stubAdapter) SearchMarriages(context.Context, string, string, int, int, string) ([]sources.MarriageEntry, error) {
	return nil, nil
}
func (s *stubAdapter) ConfirmDeath(context.Context, string, string, int) (*sources.DeathEntry, error) {
	return nil, nil
}
func (s *stubAdapter) SearchPerson(context.Context, sources.PersonSearchQuery) ([]sources.PersonCandidate, error) {
	return nil, nil
}
func (s *stubAdapter) GetParents(context.Context, string) (*sources.Parents, error) {
	return nil, nil
}
func (s *stubAdapter) ExtractFacts(context.Context, string) (*sources.PersonFacts, error) {
	return nil, nil
}

func TestRegistry_WithCapabilityFiltersUnavailable(t *testing.T) {
	civil := &stubAdapter{name: "gro", available: true, caps: map[domain.SourceCapability]bool{domain.CapabilitySearchPrimary: true}}
	downTree := &stubAdapter{name: "familytree-down", available: false, caps: map[domain.SourceCapability]bool{
		domain.CapabilityPersonSearch: true, domain.CapabilityTreeTraversal: true,
	}}
	tree := &stubAdapter{name: "familytree", available: true, caps: map[domain.SourceCapability]bool{
		domain.CapabilityPersonSearch: true, domain.CapabilityTreeTraversal: true,
	}}

	reg := sources.NewRegistry(civil, downTree, tree)

	require.True(t, reg.HasPrimaryIndex())
	require.Equal(t, civil, reg.PrimaryIndex())

	require.True(t, reg.HasTreeSource())
	require.Equal(t, tree, reg.TreeSource(), "unavailable adapter must not be selected even though it registered first")

	require.Nil(t, reg.ConfirmationSource())

	require.Len(t, reg.All(), 3)
}

func TestRegistry_DegradesWhenNoSourcesRegistered(t *testing.T) {
	reg := sources.NewRegistry()

	require.False(t, reg.HasPrimaryIndex())
	require.False(t, reg.HasTreeSource())
	require.Nil(t, reg.PrimaryIndex())
	require.Nil(t, reg.TreeSource())
	require.Nil(t, reg.ConfirmationSource())
}

func TestDescriptor_ReflectsAdapterMetadata(t *testing.T) {
	a := &stubAdapter{name: "gro", available: true, caps: map[domain.SourceCapability]bool{domain.CapabilitySearchPrimary: true}}
	d := sources.Descriptor(a)
	require.Equal(t, "gro", d.Name)
	require.True(t, d.IsAvailable())
	require.True(t, sources.HasCapability(a, domain.CapabilitySearchPrimary))
	require.False(t, sources.HasCapability(a, domain.CapabilityConfirmation))
	require.False(t, sources.HasCapability(nil, domain.CapabilitySearchPrimary))
}
