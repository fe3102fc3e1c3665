package upgrade

import (
	"context"
	"sync"
	"testing"
	"time"

	"autoupgrader/internal/app/interact"
	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/domain/bestiary"
)

type stubSnapshots struct {
	mu   sync.Mutex
	snap bestiary.Snapshot
	err  error
}

func (s *stubSnapshots) Snapshot(context.Context) (bestiary.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.snap.Clone(), nil
}

type notification struct {
	level   ports.Level
	message string
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *stubNotifier) Notify(_ context.Context, level ports.Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{level: level, message: message})
}

func (n *stubNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification{}, n.sent...)
}

type stubMetrics struct {
	mu       sync.Mutex
	outcomes []ports.Outcome
}

func (m *stubMetrics) RecordOutcome(outcome ports.Outcome, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

// stubDriver scripts driver results and records the calls it receives.
type stubDriver struct {
	mu         sync.Mutex
	open       interact.Result
	located    bool
	locateErr  error
	selectable map[string]bool
	confirm    interact.Result
	panicOn    string

	opens    int
	selected []string
	confirms int
	closes   int
}

func newStubDriver() *stubDriver {
	return &stubDriver{
		open:       interact.Success,
		located:    true,
		selectable: map[string]bool{},
		confirm:    interact.Success,
	}
}

func (d *stubDriver) OpenSurface(context.Context) interact.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens++
	return d.open
}

func (d *stubDriver) Locate(context.Context) (string, bool, error) {
	if d.locateErr != nil {
		return "", false, d.locateErr
	}
	return "panel", d.located, nil
}

func (d *stubDriver) SelectElement(_ context.Context, _ string, _ []ports.ElementRole, matchers ...interact.Matcher) interact.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, ok := range d.selectable {
		if !ok {
			continue
		}
		if _, _, found := interact.Resolve([]ports.Element{{DataID: id}}, matchers...); found {
			if id == d.panicOn {
				panic("boom")
			}
			d.selected = append(d.selected, id)
			return interact.Success
		}
	}
	return interact.NotFound
}

func (d *stubDriver) Confirm(context.Context, string) interact.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.confirms++
	return d.confirm
}

func (d *stubDriver) Close(context.Context, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
}

func newTestSequencer(snap bestiary.Snapshot, driver SurfaceDriver) (Sequencer, *stubNotifier, *stubMetrics) {
	policy := bestiary.DefaultPolicy()
	policy.Enabled = true
	policy.ReserveCountPerSpecies = 0
	policy.TargetSpeciesIDs = []bestiary.SpeciesID{7}
	notifier := &stubNotifier{}
	metrics := &stubMetrics{}
	return Sequencer{
		Snapshots:   &stubSnapshots{snap: snap},
		Policy:      NewPolicyStore(policy),
		Driver:      driver,
		Notifier:    notifier,
		Metrics:     metrics,
		SettleDelay: -1,
		NewID:       func() string { return "attempt-1" },
	}, notifier, metrics
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
