package ports

import (
	"context"

	"autoupgrader/internal/domain/bestiary"
)

type PolicyRepository interface {
	Get(ctx context.Context, profileID string) (bestiary.Policy, error)
	Save(ctx context.Context, profileID string, policy bestiary.Policy) error
}
