package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cacack/ancestry-research/internal/domain"
)

// SourceEntry is one registered external source, as declared in
// sources.yaml rather than hardcoded Go, matching the YAML-registry idiom
// the source repos in this stack use for their own adapter lists.
type SourceEntry struct {
	Name             string   `yaml:"name"`
	Kind             string   `yaml:"kind"` // "civilindex" or "treeapi"
	BaseURL          string   `yaml:"base_url"`
	CredentialKey    string   `yaml:"credential_key"` // key into the settings-backed credential store
	Capabilities     []string `yaml:"capabilities"`
	RatePerSecond    float64  `yaml:"rate_per_second"`
	Burst            int      `yaml:"burst"`
}

// SourcesConfig is the top-level sources.yaml document.
type SourcesConfig struct {
	Sources []SourceEntry `yaml:"sources"`
}

// LoadSources reads and parses a sources.yaml file. A missing file yields
// an empty configuration rather than an error; the engine's degraded modes
// already define correct behavior for a registry with no sources.
func LoadSources(path string) (*SourcesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &SourcesConfig{}, nil
		}
		return nil, fmt.Errorf("config: read sources file %s: %w", path, err)
	}

	var cfg SourcesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse sources file %s: %w", path, err)
	}
	return &cfg, nil
}

// CapabilitySet converts the entry's declared capability strings into the
// domain.SourceCapability set an adapter reports.
func (e SourceEntry) CapabilitySet() map[domain.SourceCapability]bool {
	out := make(map[domain.SourceCapability]bool, len(e.Capabilities))
	for _, c := range e.Capabilities {
		out[domain.SourceCapability(c)] = true
	}
	return out
}
