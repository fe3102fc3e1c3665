package memory

import (
	"context"

	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/domain/bestiary"
)

// PolicyRepo reads and writes without locking; callers serialize through
// TxManager.
type PolicyRepo struct {
	store *Store
}

func NewPolicyRepo(store *Store) PolicyRepo {
	return PolicyRepo{store: store}
}

func (r PolicyRepo) Get(_ context.Context, profileID string) (bestiary.Policy, error) {
	p, ok := r.store.policies[profileID]
	if !ok {
		return bestiary.Policy{}, ports.ErrNotFound
	}
	return p.Clone(), nil
}

func (r PolicyRepo) Save(_ context.Context, profileID string, policy bestiary.Policy) error {
	r.store.policies[profileID] = policy.Clone()
	return nil
}
