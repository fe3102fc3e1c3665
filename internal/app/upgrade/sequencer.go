package upgrade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autoupgrader/internal/app/interact"
	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/domain/bestiary"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultSettleDelay = 200 * time.Millisecond
	DefaultMaxFodder   = 3
)

const tracerName = "autoupgrader/internal/app/upgrade"

var errSurfaceNotDetected = errors.New("upgrade surface not detected")

// SurfaceDriver is the subset of interact.Driver the sequencer drives.
type SurfaceDriver interface {
	OpenSurface(ctx context.Context) interact.Result
	Locate(ctx context.Context) (string, bool, error)
	SelectElement(ctx context.Context, scope string, roles []ports.ElementRole, matchers ...interact.Matcher) interact.Result
	Confirm(ctx context.Context, scope string) interact.Result
	Close(ctx context.Context, scope string)
}

type Sequencer struct {
	Snapshots   ports.SnapshotSource
	Policy      PolicyReader
	Driver      SurfaceDriver
	Notifier    ports.Notifier
	Metrics     ports.UpgradeMetrics
	Logger      ports.Logger
	Tracer      trace.Tracer
	SettleDelay time.Duration
	MaxFodder   int
	Now         func() time.Time
	NewID       func() string
}

// Run resolves a base for speciesID from a fresh snapshot and performs one
// upgrade attempt. A species without an eligible base is skipped quietly.
func (s Sequencer) Run(ctx context.Context, speciesID bestiary.SpeciesID) Attempt {
	snapshot, err := s.Snapshots.Snapshot(ctx)
	if err != nil {
		attempt := s.newAttempt(speciesID, bestiary.Entity{})
		return s.finish(ctx, attempt, ports.OutcomeError, fmt.Errorf("read snapshot: %w", err))
	}
	base, ok := bestiary.SelectBase(snapshot, speciesID, s.Policy.Get())
	if !ok {
		attempt := s.newAttempt(speciesID, bestiary.Entity{})
		attempt.Outcome = ports.OutcomeSkipped
		attempt.Reason = "no eligible base"
		attempt.FinishedAt = attempt.StartedAt
		s.logger().Printf("upgrade: species %d skipped, no eligible base", speciesID)
		s.record(attempt)
		return attempt
	}
	return s.Perform(ctx, speciesID, base)
}

// Perform drives the surface through open, select base, select fodder,
// confirm and close. It never panics and always reports exactly once.
func (s Sequencer) Perform(ctx context.Context, speciesID bestiary.SpeciesID, base bestiary.Entity) Attempt {
	ctx, span := s.tracer().Start(ctx, "upgrade.attempt", trace.WithAttributes(
		attribute.Int("species_id", int(speciesID)),
		attribute.String("base_instance_id", base.InstanceID),
	))
	defer span.End()

	attempt := s.newAttempt(speciesID, base)
	var scope string
	opened := false
	err := protect(func() error {
		if res := s.Driver.OpenSurface(ctx); !res.OK() {
			return errSurfaceUnavailable{result: res}
		}
		found, ok, err := s.Driver.Locate(ctx)
		if err != nil {
			return fmt.Errorf("locate surface: %w", err)
		}
		if !ok {
			return errSurfaceUnavailable{err: errSurfaceNotDetected}
		}
		scope, opened = found, true
		return s.drive(ctx, scope, &attempt)
	})
	if opened {
		s.closeQuietly(ctx, scope)
	}

	var unavailable errSurfaceUnavailable
	switch {
	case errors.As(err, &unavailable):
		attempt = s.finish(ctx, attempt, ports.OutcomeSurfaceUnavailable, err)
	case err != nil:
		attempt = s.finish(ctx, attempt, ports.OutcomeError, err)
	default:
		attempt = s.finish(ctx, attempt, attempt.classify(), nil)
	}

	span.SetAttributes(
		attribute.String("outcome", string(attempt.Outcome)),
		attribute.Int("fodder_selected", attempt.FodderSelected),
	)
	if attempt.Outcome == ports.OutcomeError || attempt.Outcome == ports.OutcomeSurfaceUnavailable {
		span.SetStatus(codes.Error, attempt.Reason)
	}
	return attempt
}

func (s Sequencer) drive(ctx context.Context, scope string, attempt *Attempt) error {
	base := attempt.Base
	baseResult := s.Driver.SelectElement(ctx, scope, []ports.ElementRole{ports.RolePortrait},
		interact.ExactID(base.InstanceID), interact.IDToken(base.InstanceID))
	attempt.BaseSelected = baseResult.OK()
	if !attempt.BaseSelected {
		s.logger().Printf("upgrade: species %d base %s not selected: %s", attempt.SpeciesID, base.InstanceID, baseResult)
	}
	s.settle(ctx)

	snapshot, err := s.Snapshots.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	fodder := bestiary.SelectFodder(snapshot, attempt.SpeciesID, base.InstanceID, s.Policy.Get())
	if limit := s.maxFodder(); len(fodder) > limit {
		fodder = fodder[:limit]
	}
	attempt.Fodder = fodder
	for _, f := range fodder {
		res := s.Driver.SelectElement(ctx, scope, []ports.ElementRole{ports.RolePortrait, ports.RoleButton},
			interact.ExactID(f.InstanceID), interact.IDToken(f.InstanceID))
		if res.OK() {
			attempt.FodderSelected++
			continue
		}
		s.logger().Printf("upgrade: species %d fodder %s not selected: %s", attempt.SpeciesID, f.InstanceID, res)
	}
	s.settle(ctx)

	if attempt.FodderSelected == 0 {
		attempt.Reason = "no fodder selected"
		return nil
	}
	confirmResult := s.Driver.Confirm(ctx, scope)
	attempt.Confirmed = confirmResult.OK()
	if !attempt.Confirmed {
		attempt.Reason = "confirm " + confirmResult.String()
	}
	s.settle(ctx)
	return nil
}

func (s Sequencer) finish(ctx context.Context, attempt Attempt, outcome ports.Outcome, err error) Attempt {
	attempt.Outcome = outcome
	attempt.FinishedAt = s.now()
	if err != nil {
		attempt.Reason = err.Error()
	}
	s.record(attempt)

	switch outcome {
	case ports.OutcomeSuccess:
		s.notify(ctx, ports.LevelSuccess, fmt.Sprintf("Upgraded species %d successfully.", attempt.SpeciesID))
	case ports.OutcomePartial:
		s.notify(ctx, ports.LevelWarning, fmt.Sprintf("Attempted upgrade for species %d. Check game UI.", attempt.SpeciesID))
	case ports.OutcomeSurfaceUnavailable:
		if errors.Is(err, errSurfaceNotDetected) {
			s.notify(ctx, ports.LevelError, "Upgrade surface not detected.")
		} else {
			s.notify(ctx, ports.LevelError, "Could not open upgrade surface. Please open it manually and try again.")
		}
	case ports.OutcomeError:
		s.notify(ctx, ports.LevelError, fmt.Sprintf("Upgrade sequence error: %s", attempt.Reason))
	}
	s.logger().Printf("upgrade: attempt %s species %d outcome=%s elapsed=%s", attempt.ID, attempt.SpeciesID, outcome, attempt.Elapsed())
	return attempt
}

func (s Sequencer) closeQuietly(ctx context.Context, scope string) {
	err := protect(func() error {
		s.Driver.Close(ctx, scope)
		return nil
	})
	if err != nil {
		s.logger().Printf("upgrade: close surface: %v", err)
	}
}

func (s Sequencer) notify(ctx context.Context, level ports.Level, message string) {
	if s.Notifier == nil {
		return
	}
	err := protect(func() error {
		s.Notifier.Notify(ctx, level, message)
		return nil
	})
	if err != nil {
		s.logger().Printf("upgrade: notify: %v", err)
	}
}

func (s Sequencer) record(attempt Attempt) {
	if s.Metrics != nil {
		s.Metrics.RecordOutcome(attempt.Outcome, attempt.Elapsed())
	}
}

func (s Sequencer) settle(ctx context.Context) {
	d := s.SettleDelay
	if d < 0 {
		return
	}
	if d == 0 {
		d = DefaultSettleDelay
	}
	_ = interact.Wait(ctx, d)
}

func (s Sequencer) newAttempt(speciesID bestiary.SpeciesID, base bestiary.Entity) Attempt {
	newID := uuid.NewString
	if s.NewID != nil {
		newID = s.NewID
	}
	return Attempt{ID: newID(), SpeciesID: speciesID, Base: base, Fodder: []bestiary.Entity{}, StartedAt: s.now()}
}

func (s Sequencer) maxFodder() int {
	if s.MaxFodder <= 0 {
		return DefaultMaxFodder
	}
	return s.MaxFodder
}

func (s Sequencer) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s Sequencer) logger() ports.Logger {
	return ports.LoggerOrNop(s.Logger)
}

func (s Sequencer) tracer() trace.Tracer {
	if s.Tracer != nil {
		return s.Tracer
	}
	return otel.Tracer(tracerName)
}

type errSurfaceUnavailable struct {
	result interact.Result
	err    error
}

func (e errSurfaceUnavailable) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return "open surface: " + e.result.String()
}

func (e errSurfaceUnavailable) Unwrap() error {
	return e.err
}

// protect converts a panic inside fn into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
