package bestiary

const (
	MinTier = 1
	MaxTier = 5
)

type SpeciesID int

type Entity struct {
	InstanceID string    `json:"instance_id" yaml:"instance_id"`
	SpeciesID  SpeciesID `json:"species_id" yaml:"species_id"`
	Tier       int       `json:"tier" yaml:"tier"`
	Level      int       `json:"level" yaml:"level"`
}

// EffectiveTier treats an unset tier as the lowest rank.
func (e Entity) EffectiveTier() int {
	if e.Tier <= 0 {
		return MinTier
	}
	return e.Tier
}

func (e Entity) EffectiveLevel() int {
	if e.Level < 0 {
		return 0
	}
	return e.Level
}

func (e Entity) Maxed() bool {
	return e.EffectiveTier() >= MaxTier
}

type Snapshot []Entity

func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

func (s Snapshot) OfSpecies(speciesID SpeciesID) []Entity {
	out := make([]Entity, 0)
	for _, e := range s {
		if e.SpeciesID == speciesID {
			out = append(out, e)
		}
	}
	return out
}

func (s Snapshot) Find(instanceID string) (Entity, bool) {
	for _, e := range s {
		if e.InstanceID == instanceID {
			return e, true
		}
	}
	return Entity{}, false
}
