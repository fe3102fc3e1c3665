package bestiary

import "sort"

// SelectBase picks the most advanced eligible instance of a species: highest
// tier first, then highest level. Maxed instances are never returned.
func SelectBase(snapshot Snapshot, speciesID SpeciesID, policy Policy) (Entity, bool) {
	candidates := make([]Entity, 0)
	for _, e := range snapshot {
		if e.SpeciesID != speciesID {
			continue
		}
		if !eligibleBase(e, policy) {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return Entity{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.EffectiveTier() != b.EffectiveTier() {
			return a.EffectiveTier() > b.EffectiveTier()
		}
		return a.EffectiveLevel() > b.EffectiveLevel()
	})
	return candidates[0], true
}

// SelectFodder returns the consumable instances of a species, least valuable
// first, after holding back the policy's reserve count.
func SelectFodder(snapshot Snapshot, speciesID SpeciesID, baseInstanceID string, policy Policy) []Entity {
	candidates := make([]Entity, 0)
	for _, e := range snapshot {
		if e.SpeciesID != speciesID || e.InstanceID == baseInstanceID {
			continue
		}
		tier := e.EffectiveTier()
		if tier < policy.MinFodderTier || tier > policy.MaxFodderTier {
			continue
		}
		candidates = append(candidates, e)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.EffectiveTier() != b.EffectiveTier() {
			return a.EffectiveTier() < b.EffectiveTier()
		}
		return a.EffectiveLevel() < b.EffectiveLevel()
	})

	reserve := policy.ReserveCountPerSpecies
	if reserve < 0 {
		reserve = 0
	}
	if reserve >= len(candidates) {
		return []Entity{}
	}
	return candidates[reserve:]
}

// TriggerCandidates lists targeted species that currently hold at least one
// instance eligible to be a base, in first-seen order.
func TriggerCandidates(snapshot Snapshot, policy Policy) []SpeciesID {
	if !policy.Enabled || !policy.HasTargets() {
		return nil
	}
	seen := map[SpeciesID]struct{}{}
	out := make([]SpeciesID, 0)
	for _, e := range snapshot {
		if !policy.Targets(e.SpeciesID) || !eligibleBase(e, policy) {
			continue
		}
		if _, ok := seen[e.SpeciesID]; ok {
			continue
		}
		seen[e.SpeciesID] = struct{}{}
		out = append(out, e.SpeciesID)
	}
	return out
}

func eligibleBase(e Entity, policy Policy) bool {
	return !e.Maxed() && e.EffectiveLevel() >= policy.LevelThreshold
}
