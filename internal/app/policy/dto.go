package policy

import "autoupgrader/internal/domain/bestiary"

type UpdateRequest struct {
	Policy bestiary.Policy `json:"policy"`
}

type QueueRequest struct {
	SpeciesID bestiary.SpeciesID `json:"species_id"`
}

type QueueResponse struct {
	SpeciesID bestiary.SpeciesID `json:"species_id"`
	Queued    bool               `json:"queued"`
	Message   string             `json:"message,omitempty"`
}
