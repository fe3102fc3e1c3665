package ports

import (
	"context"

	"autoupgrader/internal/domain/bestiary"
)

type SnapshotSource interface {
	Snapshot(ctx context.Context) (bestiary.Snapshot, error)
}

// SnapshotFeed delivers collection changes. Callbacks must return quickly.
type SnapshotFeed interface {
	Subscribe(onChange func(bestiary.Snapshot)) (unsubscribe func())
}
