package policy

import (
	"context"
	"errors"
	"fmt"

	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/app/upgrade"
	"autoupgrader/internal/domain/bestiary"
)

var (
	ErrInvalidPolicy  = bestiary.ErrInvalidPolicy
	ErrInvalidRequest = errors.New("invalid queue request")
	ErrNoTarget       = errors.New("no target species selected")
	ErrNoEligibleBase = errors.New("no eligible base at threshold")
)

const (
	msgSaved          = "Settings saved"
	msgNoTarget       = "No target species selected"
	msgNoEligibleBase = "No eligible base monster found at threshold"
)

type Holder interface {
	Get() bestiary.Policy
	Set(policy bestiary.Policy) bestiary.Policy
}

type MonitorControl interface {
	Start()
	Stop()
}

type Enqueuer interface {
	Enqueue(speciesID bestiary.SpeciesID) bool
}

// UseCase backs the configuration surface: the settings panel, the toggle
// button and the manual "run next" trigger.
type UseCase struct {
	Store     Holder
	Repo      ports.PolicyRepository
	TxManager ports.TxManager
	Monitor   MonitorControl
	Notifier  ports.Notifier
	Snapshots ports.SnapshotSource
	Queue     Enqueuer
	ProfileID string
	Logger    ports.Logger
}

func (u UseCase) Get(_ context.Context) bestiary.Policy {
	return u.Store.Get()
}

// Bootstrap installs base (defaults already merged with any policy file) and
// then the persisted row for the profile, if one exists.
func (u UseCase) Bootstrap(ctx context.Context, base bestiary.Policy) (bestiary.Policy, error) {
	effective := base.Normalize()
	if u.Repo != nil {
		persisted, err := u.Repo.Get(ctx, u.ProfileID)
		switch {
		case err == nil:
			effective = persisted.Normalize()
		case errors.Is(err, ports.ErrNotFound):
		default:
			return bestiary.Policy{}, fmt.Errorf("load policy %q: %w", u.ProfileID, err)
		}
	}
	if err := effective.Validate(); err != nil {
		return bestiary.Policy{}, fmt.Errorf("bootstrap policy: %w", err)
	}
	effective = u.Store.Set(effective)
	u.syncMonitor(effective)
	ports.LoggerOrNop(u.Logger).Printf("policy: bootstrapped profile=%q enabled=%v targets=%v", u.ProfileID, effective.Enabled, effective.TargetSpeciesIDs)
	return effective, nil
}

func (u UseCase) Update(ctx context.Context, req UpdateRequest) (bestiary.Policy, error) {
	next := req.Policy.Normalize()
	if err := next.Validate(); err != nil {
		return bestiary.Policy{}, fmt.Errorf("update policy: %w", err)
	}
	if err := u.persist(ctx, next); err != nil {
		return bestiary.Policy{}, err
	}
	next = u.Store.Set(next)
	u.notify(ctx, ports.LevelSuccess, msgSaved)
	u.syncMonitor(next)
	return next, nil
}

func (u UseCase) Toggle(ctx context.Context) (bestiary.Policy, error) {
	next := u.Store.Get()
	next.Enabled = !next.Enabled
	if err := u.persist(ctx, next); err != nil {
		return bestiary.Policy{}, err
	}
	next = u.Store.Set(next)
	u.syncMonitor(next)
	state := "disabled"
	if next.Enabled {
		state = "enabled"
	}
	u.notify(ctx, ports.LevelInfo, "Auto-Upgrader "+state)
	return next, nil
}

// RunNext queues the first target species when it has an eligible base. It
// works whether or not automatic triggering is enabled.
func (u UseCase) RunNext(ctx context.Context) (QueueResponse, error) {
	current := u.Store.Get()
	if !current.HasTargets() {
		u.notify(ctx, ports.LevelWarning, msgNoTarget)
		return QueueResponse{Message: msgNoTarget}, ErrNoTarget
	}
	speciesID := current.TargetSpeciesIDs[0]
	snapshot, err := u.Snapshots.Snapshot(ctx)
	if err != nil {
		return QueueResponse{SpeciesID: speciesID}, fmt.Errorf("read snapshot: %w", err)
	}
	if _, ok := bestiary.SelectBase(snapshot, speciesID, current); !ok {
		u.notify(ctx, ports.LevelWarning, msgNoEligibleBase)
		return QueueResponse{SpeciesID: speciesID, Message: msgNoEligibleBase}, ErrNoEligibleBase
	}
	return u.enqueue(speciesID)
}

func (u UseCase) Enqueue(_ context.Context, req QueueRequest) (QueueResponse, error) {
	if req.SpeciesID <= 0 {
		return QueueResponse{}, ErrInvalidRequest
	}
	return u.enqueue(req.SpeciesID)
}

func (u UseCase) enqueue(speciesID bestiary.SpeciesID) (QueueResponse, error) {
	if u.Queue.Enqueue(speciesID) {
		return QueueResponse{SpeciesID: speciesID, Queued: true}, nil
	}
	if q, ok := u.Queue.(interface{ Closed() bool }); ok && q.Closed() {
		return QueueResponse{SpeciesID: speciesID}, upgrade.ErrQueueClosed
	}
	return QueueResponse{SpeciesID: speciesID, Message: "already queued or running"}, nil
}

func (u UseCase) persist(ctx context.Context, p bestiary.Policy) error {
	if u.Repo == nil {
		return nil
	}
	save := func(ctx context.Context) error {
		return u.Repo.Save(ctx, u.ProfileID, p)
	}
	var err error
	if u.TxManager != nil {
		err = u.TxManager.RunInTx(ctx, save)
	} else {
		err = save(ctx)
	}
	if err != nil {
		return fmt.Errorf("save policy %q: %w", u.ProfileID, err)
	}
	return nil
}

func (u UseCase) syncMonitor(p bestiary.Policy) {
	if u.Monitor == nil {
		return
	}
	if p.Enabled {
		u.Monitor.Start()
		return
	}
	u.Monitor.Stop()
}

func (u UseCase) notify(ctx context.Context, level ports.Level, message string) {
	if u.Notifier != nil {
		u.Notifier.Notify(ctx, level, message)
	}
}
