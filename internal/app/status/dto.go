package status

import (
	"autoupgrader/internal/app/upgrade"
	"autoupgrader/internal/domain/bestiary"
)

type Response struct {
	QueueState     upgrade.QueueState   `json:"queue_state"`
	Pending        []bestiary.SpeciesID `json:"pending"`
	InFlight       *bestiary.SpeciesID  `json:"in_flight,omitempty"`
	MonitorRunning bool                 `json:"monitor_running"`
	Policy         bestiary.Policy      `json:"policy"`
	KPI            any                  `json:"kpi,omitempty"`
}
