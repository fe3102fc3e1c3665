package bestiary

import (
	"errors"
	"sort"
)

const (
	DefaultLevelThreshold         = 50
	DefaultReserveCountPerSpecies = 1
	DefaultMinFodderTier          = 1
	DefaultMaxFodderTier          = 4
)

var ErrInvalidPolicy = errors.New("invalid upgrade policy")

type Policy struct {
	Enabled                bool        `json:"enabled" yaml:"enabled"`
	LevelThreshold         int         `json:"level_threshold" yaml:"level_threshold"`
	ReserveCountPerSpecies int         `json:"reserve_count_per_species" yaml:"reserve_count_per_species"`
	MinFodderTier          int         `json:"min_fodder_tier" yaml:"min_fodder_tier"`
	MaxFodderTier          int         `json:"max_fodder_tier" yaml:"max_fodder_tier"`
	TargetSpeciesIDs       []SpeciesID `json:"target_species_ids" yaml:"target_species_ids"`
}

func DefaultPolicy() Policy {
	return Policy{
		Enabled:                false,
		LevelThreshold:         DefaultLevelThreshold,
		ReserveCountPerSpecies: DefaultReserveCountPerSpecies,
		MinFodderTier:          DefaultMinFodderTier,
		MaxFodderTier:          DefaultMaxFodderTier,
		TargetSpeciesIDs:       []SpeciesID{},
	}
}

// Normalize clamps numeric fields into their legal ranges and dedupes targets.
func (p Policy) Normalize() Policy {
	if p.LevelThreshold < 1 {
		p.LevelThreshold = 1
	}
	if p.ReserveCountPerSpecies < 0 {
		p.ReserveCountPerSpecies = 0
	}
	p.MinFodderTier = clampTier(p.MinFodderTier)
	p.MaxFodderTier = clampTier(p.MaxFodderTier)
	if p.MinFodderTier > p.MaxFodderTier {
		p.MinFodderTier, p.MaxFodderTier = p.MaxFodderTier, p.MinFodderTier
	}
	p.TargetSpeciesIDs = dedupeSpecies(p.TargetSpeciesIDs)
	return p
}

func (p Policy) Validate() error {
	if p.LevelThreshold < 1 || p.ReserveCountPerSpecies < 0 {
		return ErrInvalidPolicy
	}
	if p.MinFodderTier < MinTier || p.MaxFodderTier > MaxTier || p.MinFodderTier > p.MaxFodderTier {
		return ErrInvalidPolicy
	}
	for _, id := range p.TargetSpeciesIDs {
		if id <= 0 {
			return ErrInvalidPolicy
		}
	}
	return nil
}

func (p Policy) Targets(speciesID SpeciesID) bool {
	for _, id := range p.TargetSpeciesIDs {
		if id == speciesID {
			return true
		}
	}
	return false
}

func (p Policy) HasTargets() bool {
	return len(p.TargetSpeciesIDs) > 0
}

func (p Policy) Clone() Policy {
	out := p
	out.TargetSpeciesIDs = append([]SpeciesID{}, p.TargetSpeciesIDs...)
	return out
}

func clampTier(tier int) int {
	if tier < MinTier {
		return MinTier
	}
	if tier > MaxTier {
		return MaxTier
	}
	return tier
}

func dedupeSpecies(ids []SpeciesID) []SpeciesID {
	seen := make(map[SpeciesID]struct{}, len(ids))
	out := make([]SpeciesID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
