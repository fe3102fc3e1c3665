package roster

import (
	"context"

	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/domain/bestiary"
)

type PolicyReader interface {
	Get() bestiary.Policy
}

// UseCase lists every owned species for target selection.
type UseCase struct {
	Snapshots ports.SnapshotSource
	Policy    PolicyReader
}

func (u UseCase) Execute(ctx context.Context) (Response, error) {
	snapshot, err := u.Snapshots.Snapshot(ctx)
	if err != nil {
		return Response{}, err
	}
	policy := u.Policy.Get()
	groups := bestiary.GroupBySpecies(snapshot)
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		_, ready := bestiary.SelectBase(snapshot, g.SpeciesID, policy)
		rows = append(rows, Row{
			SpeciesID:           g.SpeciesID,
			Count:               g.Count,
			MaxTier:             g.MaxTier,
			RepresentativeLevel: g.Representative.EffectiveLevel(),
			Targeted:            policy.Targets(g.SpeciesID),
			Ready:               ready,
		})
	}
	return Response{Species: rows}, nil
}
