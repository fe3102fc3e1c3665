package bestiary

import (
	"errors"
	"testing"
)

func TestDefaultPolicy_MatchesModDefaults(t *testing.T) {
	p := DefaultPolicy()
	if p.Enabled {
		t.Fatalf("default policy must start disabled")
	}
	if p.LevelThreshold != 50 || p.ReserveCountPerSpecies != 1 {
		t.Fatalf("threshold/reserve = (%d,%d), want (50,1)", p.LevelThreshold, p.ReserveCountPerSpecies)
	}
	if p.MinFodderTier != 1 || p.MaxFodderTier != 4 {
		t.Fatalf("fodder tiers = (%d,%d), want (1,4)", p.MinFodderTier, p.MaxFodderTier)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
}

func TestPolicyNormalize_ClampsAndDedupes(t *testing.T) {
	p := Policy{
		LevelThreshold:         0,
		ReserveCountPerSpecies: -3,
		MinFodderTier:          9,
		MaxFodderTier:          0,
		TargetSpeciesIDs:       []SpeciesID{9, 7, 9, 1},
	}.Normalize()
	if p.LevelThreshold != 1 || p.ReserveCountPerSpecies != 0 {
		t.Fatalf("threshold/reserve = (%d,%d), want (1,0)", p.LevelThreshold, p.ReserveCountPerSpecies)
	}
	if p.MinFodderTier != 1 || p.MaxFodderTier != 5 {
		t.Fatalf("fodder tiers = (%d,%d), want (1,5)", p.MinFodderTier, p.MaxFodderTier)
	}
	want := []SpeciesID{1, 7, 9}
	if len(p.TargetSpeciesIDs) != len(want) {
		t.Fatalf("targets = %v, want %v", p.TargetSpeciesIDs, want)
	}
	for i := range want {
		if p.TargetSpeciesIDs[i] != want[i] {
			t.Fatalf("targets = %v, want %v", p.TargetSpeciesIDs, want)
		}
	}
}

func TestPolicyValidate_RejectsBadTargets(t *testing.T) {
	p := DefaultPolicy()
	p.TargetSpeciesIDs = []SpeciesID{0}
	if err := p.Validate(); !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}

func TestGroupBySpecies_CountsAndMaxTier(t *testing.T) {
	groups := GroupBySpecies(Snapshot{
		{InstanceID: "a", SpeciesID: 9, Tier: 1, Level: 3},
		{InstanceID: "b", SpeciesID: 2, Tier: 2, Level: 4},
		{InstanceID: "c", SpeciesID: 9, Tier: 4, Level: 5},
	})
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].SpeciesID != 2 || groups[1].SpeciesID != 9 {
		t.Fatalf("unexpected order: %+v", groups)
	}
	if groups[1].Count != 2 || groups[1].MaxTier != 4 || groups[1].Representative.InstanceID != "a" {
		t.Fatalf("unexpected species 9 group: %+v", groups[1])
	}
}
