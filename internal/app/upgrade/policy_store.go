package upgrade

import (
	"sync"

	"autoupgrader/internal/domain/bestiary"
)

type PolicyReader interface {
	Get() bestiary.Policy
}

// PolicyStore is the process-wide policy. Readers always get a copy.
type PolicyStore struct {
	mu     sync.RWMutex
	policy bestiary.Policy
}

func NewPolicyStore(initial bestiary.Policy) *PolicyStore {
	return &PolicyStore{policy: initial.Normalize()}
}

func (s *PolicyStore) Get() bestiary.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy.Clone()
}

func (s *PolicyStore) Set(policy bestiary.Policy) bestiary.Policy {
	policy = policy.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = policy.Clone()
	return policy
}
