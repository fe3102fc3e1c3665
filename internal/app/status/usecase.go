package status

import (
	"context"

	"autoupgrader/internal/app/upgrade"
	"autoupgrader/internal/domain/bestiary"
)

type QueueView interface {
	State() upgrade.QueueState
	Pending() []bestiary.SpeciesID
	InFlight() (bestiary.SpeciesID, bool)
}

type MonitorView interface {
	Running() bool
}

type KPIView interface {
	SnapshotAny() any
}

type UseCase struct {
	Queue   QueueView
	Monitor MonitorView
	Policy  upgrade.PolicyReader
	KPI     KPIView
}

func (u UseCase) Execute(_ context.Context) (Response, error) {
	resp := Response{
		QueueState: u.Queue.State(),
		Pending:    u.Queue.Pending(),
		Policy:     u.Policy.Get(),
	}
	if id, ok := u.Queue.InFlight(); ok {
		resp.InFlight = &id
	}
	if u.Monitor != nil {
		resp.MonitorRunning = u.Monitor.Running()
	}
	if u.KPI != nil {
		resp.KPI = u.KPI.SnapshotAny()
	}
	return resp, nil
}
