package config

import (
	"fmt"
	"os"
	"strings"

	"autoupgrader/internal/domain/bestiary"

	"gopkg.in/yaml.v3"
)

// LoadPolicyFile merges a YAML policy over base. Keys missing from the file
// keep their base value. An empty path returns base unchanged.
func LoadPolicyFile(path string, base bestiary.Policy) (bestiary.Policy, error) {
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return bestiary.Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	out := base.Clone()
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return bestiary.Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	out = out.Normalize()
	if err := out.Validate(); err != nil {
		return bestiary.Policy{}, fmt.Errorf("policy file %s: %w", path, err)
	}
	return out, nil
}

type seedFile struct {
	Monsters []bestiary.Entity `yaml:"monsters"`
}

// LoadSeedFile reads the emulated collection. An empty path yields no
// monsters.
func LoadSeedFile(path string) ([]bestiary.Entity, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i, m := range doc.Monsters {
		if m.SpeciesID <= 0 {
			return nil, fmt.Errorf("seed file %s: monster %d has no species_id", path, i)
		}
	}
	return doc.Monsters, nil
}
