package roster

import "autoupgrader/internal/domain/bestiary"

type Row struct {
	SpeciesID           bestiary.SpeciesID `json:"species_id"`
	Count               int                `json:"count"`
	MaxTier             int                `json:"max_tier"`
	RepresentativeLevel int                `json:"representative_level"`
	Targeted            bool               `json:"targeted"`
	Ready               bool               `json:"ready"`
}

type Response struct {
	Species []Row `json:"species"`
}
