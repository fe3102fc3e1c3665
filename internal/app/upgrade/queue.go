package upgrade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"autoupgrader/internal/app/interact"
	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/domain/bestiary"
)

const DefaultCooldown = 300 * time.Millisecond

var ErrQueueClosed = errors.New("upgrade queue closed")

type QueueState string

const (
	QueueIdle     QueueState = "idle"
	QueueDraining QueueState = "draining"
)

// Runner performs one upgrade attempt for a dequeued species.
type Runner func(ctx context.Context, speciesID bestiary.SpeciesID)

type QueueOptions struct {
	// Cooldown is the pause after every attempt. Negative disables it.
	Cooldown time.Duration
	Logger   ports.Logger
}

// Queue is the single-flight work queue. Pending species are unique, drained
// FIFO, and at most one Runner call is in flight at any time.
type Queue struct {
	mu          sync.Mutex
	pending     []bestiary.SpeciesID
	members     map[bestiary.SpeciesID]struct{}
	inFlight    bestiary.SpeciesID
	hasInFlight bool
	draining    bool
	closed      bool
	idle        *sync.Cond

	run      Runner
	cooldown time.Duration
	logger   ports.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewQueue(ctx context.Context, run Runner, opts QueueOptions) *Queue {
	if ctx == nil {
		ctx = context.Background()
	}
	cooldown := opts.Cooldown
	if cooldown == 0 {
		cooldown = DefaultCooldown
	}
	qctx, cancel := context.WithCancel(ctx)
	q := &Queue{
		members:  map[bestiary.SpeciesID]struct{}{},
		run:      run,
		cooldown: cooldown,
		logger:   ports.LoggerOrNop(opts.Logger),
		ctx:      qctx,
		cancel:   cancel,
	}
	q.idle = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends speciesID unless it is already pending or in flight, and
// starts a drain when the queue is idle. It reports whether it appended.
func (q *Queue) Enqueue(speciesID bestiary.SpeciesID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	if _, ok := q.members[speciesID]; ok {
		return false
	}
	if q.hasInFlight && q.inFlight == speciesID {
		return false
	}
	q.pending = append(q.pending, speciesID)
	q.members[speciesID] = struct{}{}
	if !q.draining {
		q.draining = true
		go q.drain()
	}
	return true
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 || q.closed {
			q.draining = false
			q.idle.Broadcast()
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending = q.pending[1:]
		delete(q.members, next)
		q.inFlight, q.hasInFlight = next, true
		q.mu.Unlock()

		q.runOne(next)

		q.mu.Lock()
		q.hasInFlight = false
		q.mu.Unlock()

		if q.cooldown > 0 {
			_ = interact.Wait(q.ctx, q.cooldown)
		}
	}
}

func (q *Queue) runOne(speciesID bestiary.SpeciesID) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Printf("upgrade: queue runner panic for species %d: %v", speciesID, r)
		}
	}()
	q.run(q.ctx, speciesID)
}

func (q *Queue) State() QueueState {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.draining {
		return QueueDraining
	}
	return QueueIdle
}

func (q *Queue) Pending() []bestiary.SpeciesID {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]bestiary.SpeciesID{}, q.pending...)
}

func (q *Queue) InFlight() (bestiary.SpeciesID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight, q.hasInFlight
}

func (q *Queue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Wait blocks until the queue is idle.
func (q *Queue) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.draining {
		q.idle.Wait()
	}
}

// Close stops accepting work, drops anything pending, and waits for the
// in-flight attempt to return. The in-flight attempt sees a cancelled context.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return fmt.Errorf("close: %w", ErrQueueClosed)
	}
	q.closed = true
	q.pending = nil
	q.members = map[bestiary.SpeciesID]struct{}{}
	q.mu.Unlock()

	q.cancel()
	q.Wait()
	return nil
}
