package upgrade

import (
	"time"

	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/domain/bestiary"
)

type Attempt struct {
	ID             string             `json:"id"`
	SpeciesID      bestiary.SpeciesID `json:"species_id"`
	Base           bestiary.Entity    `json:"base"`
	Fodder         []bestiary.Entity  `json:"fodder"`
	BaseSelected   bool               `json:"base_selected"`
	FodderSelected int                `json:"fodder_selected"`
	Confirmed      bool               `json:"confirmed"`
	Outcome        ports.Outcome      `json:"outcome"`
	Reason         string             `json:"reason,omitempty"`
	StartedAt      time.Time          `json:"started_at"`
	FinishedAt     time.Time          `json:"finished_at"`
}

func (a Attempt) Elapsed() time.Duration {
	if a.FinishedAt.Before(a.StartedAt) {
		return 0
	}
	return a.FinishedAt.Sub(a.StartedAt)
}

// classify applies the success rule: base picked, at least one fodder picked,
// and the surface confirmed.
func (a Attempt) classify() ports.Outcome {
	if a.BaseSelected && a.FodderSelected > 0 && a.Confirmed {
		return ports.OutcomeSuccess
	}
	return ports.OutcomePartial
}
