package inmemory

import (
	"sync"
	"time"

	"autoupgrader/internal/app/ports"
)

type Snapshot struct {
	AttemptTotal       uint64            `json:"attempt_total"`
	Success            uint64            `json:"success"`
	Partial            uint64            `json:"partial"`
	SurfaceUnavailable uint64            `json:"surface_unavailable"`
	Error              uint64            `json:"error"`
	Skipped            uint64            `json:"skipped"`
	ByOutcome          map[string]uint64 `json:"by_outcome"`
	LastElapsedMillis  int64             `json:"last_elapsed_ms"`
	AvgElapsedMillis   int64             `json:"avg_elapsed_ms"`
}

type Recorder struct {
	mu        sync.Mutex
	byOutcome map[ports.Outcome]uint64
	total     uint64
	elapsed   time.Duration
	last      time.Duration
}

func NewRecorder() *Recorder {
	return &Recorder{
		byOutcome: map[ports.Outcome]uint64{},
	}
}

func (r *Recorder) RecordOutcome(outcome ports.Outcome, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byOutcome[outcome]++
	r.total++
	r.elapsed += elapsed
	r.last = elapsed
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		AttemptTotal:       r.total,
		Success:            r.byOutcome[ports.OutcomeSuccess],
		Partial:            r.byOutcome[ports.OutcomePartial],
		SurfaceUnavailable: r.byOutcome[ports.OutcomeSurfaceUnavailable],
		Error:              r.byOutcome[ports.OutcomeError],
		Skipped:            r.byOutcome[ports.OutcomeSkipped],
		ByOutcome:          make(map[string]uint64, len(r.byOutcome)),
		LastElapsedMillis:  r.last.Milliseconds(),
	}
	if r.total > 0 {
		out.AvgElapsedMillis = (r.elapsed / time.Duration(r.total)).Milliseconds()
	}
	for k, v := range r.byOutcome {
		out.ByOutcome[string(k)] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
