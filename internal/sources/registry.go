package sources

import (
	"github.com/cacack/ancestry-research/internal/domain"
)

// Registry enumerates the external record sources available to a research
// job and mediates capability-filtered selection. It never owns a
// source's liveness; that is an adapter-level breaker.
type Registry struct {
	adapters []Adapter
}

// NewRegistry builds a Registry over the given adapters, in registration
// order; selection methods preserve that order so callers get a
// deterministic preference among equally-capable sources.
func NewRegistry(adapters ...Adapter) *Registry {
	return &Registry{adapters: append([]Adapter(nil), adapters...)}
}

// All returns every registered adapter, available or not.
func (r *Registry) All() []Adapter {
	return append([]Adapter(nil), r.adapters...)
}

// WithCapability returns every available adapter offering capability c.
func (r *Registry) WithCapability(c domain.SourceCapability) []Adapter {
	var out []Adapter
	for _, a := range r.adapters {
		if a.IsAvailable() && a.Capabilities()[c] {
			out = append(out, a)
		}
	}
	return out
}

// PrimaryIndex returns the first available adapter offering search_primary,
// or nil if none is registered or available.
func (r *Registry) PrimaryIndex() Adapter {
	for _, a := range r.WithCapability(domain.CapabilitySearchPrimary) {
		return a
	}
	return nil
}

// TreeSource returns the first available adapter offering both
// person_search and tree_traversal, or nil.
func (r *Registry) TreeSource() Adapter {
	for _, a := range r.adapters {
		if a.IsAvailable() && a.Capabilities()[domain.CapabilityPersonSearch] && a.Capabilities()[domain.CapabilityTreeTraversal] {
			return a
		}
	}
	return nil
}

// ConfirmationSource returns the first available adapter offering
// confirmation (death-confirmation capable), or nil.
func (r *Registry) ConfirmationSource() Adapter {
	for _, a := range r.WithCapability(domain.CapabilityConfirmation) {
		return a
	}
	return nil
}

// HasPrimaryIndex reports whether any primary-index source is currently
// available.
func (r *Registry) HasPrimaryIndex() bool {
	return r.PrimaryIndex() != nil
}

// HasTreeSource reports whether any tree source is currently available.
func (r *Registry) HasTreeSource() bool {
	return r.TreeSource() != nil
}
