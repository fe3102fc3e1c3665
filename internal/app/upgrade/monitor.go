package upgrade

import (
	"sync"

	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/domain/bestiary"
)

type Enqueuer interface {
	Enqueue(speciesID bestiary.SpeciesID) bool
}

// Monitor turns snapshot change notifications into queued species.
type Monitor struct {
	feed   ports.SnapshotFeed
	policy PolicyReader
	queue  Enqueuer
	logger ports.Logger

	mu          sync.Mutex
	unsubscribe func()
}

func NewMonitor(feed ports.SnapshotFeed, policy PolicyReader, queue Enqueuer, logger ports.Logger) *Monitor {
	return &Monitor{
		feed:   feed,
		policy: policy,
		queue:  queue,
		logger: ports.LoggerOrNop(logger),
	}
}

// Start (re)subscribes to the feed. Calling it while running replaces the
// previous subscription.
func (m *Monitor) Start() {
	m.Stop()
	unsubscribe := m.feed.Subscribe(m.handle)
	m.mu.Lock()
	m.unsubscribe = unsubscribe
	m.mu.Unlock()
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()
	if unsubscribe == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Printf("upgrade: unsubscribe panic: %v", r)
		}
	}()
	unsubscribe()
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unsubscribe != nil
}

func (m *Monitor) handle(snapshot bestiary.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Printf("upgrade: snapshot notification dropped: %v", r)
		}
	}()
	policy := m.policy.Get()
	if !policy.Enabled || !policy.HasTargets() {
		return
	}
	for _, speciesID := range bestiary.TriggerCandidates(snapshot, policy) {
		if m.queue.Enqueue(speciesID) {
			m.logger.Printf("upgrade: species %d queued", speciesID)
		}
	}
}
