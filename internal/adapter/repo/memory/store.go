package memory

import (
	"sync"

	"autoupgrader/internal/domain/bestiary"
)

type Store struct {
	mu       sync.RWMutex
	policies map[string]bestiary.Policy
}

func NewStore() *Store {
	return &Store{
		policies: make(map[string]bestiary.Policy),
	}
}

func (s *Store) SeedPolicy(profileID string, policy bestiary.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[profileID] = policy.Clone()
}
