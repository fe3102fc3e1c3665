package bestiary

import "sort"

type SpeciesGroup struct {
	SpeciesID      SpeciesID `json:"species_id"`
	Count          int       `json:"count"`
	MaxTier        int       `json:"max_tier"`
	Representative Entity    `json:"representative"`
}

// GroupBySpecies summarizes a snapshot per species, ordered by species id.
// The representative is the first instance seen for the species.
func GroupBySpecies(snapshot Snapshot) []SpeciesGroup {
	index := map[SpeciesID]int{}
	groups := make([]SpeciesGroup, 0)
	for _, e := range snapshot {
		i, ok := index[e.SpeciesID]
		if !ok {
			index[e.SpeciesID] = len(groups)
			groups = append(groups, SpeciesGroup{
				SpeciesID:      e.SpeciesID,
				Count:          1,
				MaxTier:        e.EffectiveTier(),
				Representative: e,
			})
			continue
		}
		groups[i].Count++
		if tier := e.EffectiveTier(); tier > groups[i].MaxTier {
			groups[i].MaxTier = tier
		}
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].SpeciesID < groups[j].SpeciesID })
	return groups
}
