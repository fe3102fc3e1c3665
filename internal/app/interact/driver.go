package interact

import (
	"context"
	"regexp"
	"strings"
	"time"

	"autoupgrader/internal/app/ports"
)

const (
	DefaultPollInterval    = 150 * time.Millisecond
	DefaultOpenAttempts    = 20
	DefaultConfirmAttempts = 40
)

var (
	DefaultConfirmLabel  = regexp.MustCompile(`(?i)\b(upgrade|evolve|confirm|apply)\b`)
	DefaultSuccessSignal = regexp.MustCompile(`(?i)success|upgraded|tier\s*up|evolved`)
	DefaultCloseLabel    = regexp.MustCompile(`(?i)\b(close|done|ok|back)\b`)
)

type Timing struct {
	PollInterval    time.Duration
	OpenAttempts    int
	ConfirmAttempts int
}

func DefaultTiming() Timing {
	return Timing{
		PollInterval:    DefaultPollInterval,
		OpenAttempts:    DefaultOpenAttempts,
		ConfirmAttempts: DefaultConfirmAttempts,
	}
}

func (t Timing) withDefaults() Timing {
	def := DefaultTiming()
	if t.PollInterval <= 0 {
		t.PollInterval = def.PollInterval
	}
	if t.OpenAttempts <= 0 {
		t.OpenAttempts = def.OpenAttempts
	}
	if t.ConfirmAttempts <= 0 {
		t.ConfirmAttempts = def.ConfirmAttempts
	}
	return t
}

// Driver performs single logical actions against the upgrade surface. Every
// state-dependent step is a bounded poll; host failures are reported as typed
// results instead of errors wherever the step is allowed to fail.
type Driver struct {
	Host       ports.SurfaceHost
	Strategies []OpenStrategy
	Timing     Timing
	Logger     ports.Logger

	ConfirmLabel  *regexp.Regexp
	SuccessSignal *regexp.Regexp
	CloseLabel    *regexp.Regexp
}

func (d Driver) OpenSurface(ctx context.Context) Result {
	timing := d.Timing.withDefaults()
	logger := ports.LoggerOrNop(d.Logger)
	for _, strategy := range d.Strategies {
		triggered, err := strategy.Trigger(ctx, d.Host)
		if err != nil {
			logger.Printf("interact: open strategy %s failed: %v", strategy.Name(), err)
			continue
		}
		if !triggered {
			continue
		}
		opened := Poll(ctx, PollBudget{Interval: timing.PollInterval, MaxAttempts: timing.OpenAttempts}, d.isOpen)
		if opened {
			return Success
		}
		logger.Printf("interact: open strategy %s exhausted %d polls", strategy.Name(), timing.OpenAttempts)
	}
	if d.isOpen(ctx) {
		return Success
	}
	return TimedOut
}

// Locate returns the currently open surface scope.
func (d Driver) Locate(ctx context.Context) (string, bool, error) {
	return d.Host.OpenScope(ctx)
}

// SelectElement activates the first element accepted by matchers. It does not
// retry; a miss or a failed activation yields NotFound.
func (d Driver) SelectElement(ctx context.Context, scope string, roles []ports.ElementRole, matchers ...Matcher) Result {
	logger := ports.LoggerOrNop(d.Logger)
	elements, err := d.Host.Query(ctx, scope, roles...)
	if err != nil {
		logger.Printf("interact: query %q failed: %v", scope, err)
		return NotFound
	}
	el, _, ok := Resolve(elements, matchers...)
	if !ok {
		return NotFound
	}
	if err := d.Host.Activate(ctx, scope, el.Ref); err != nil {
		logger.Printf("interact: activate %s failed: %v", el.Ref, err)
		return NotFound
	}
	return Success
}

func (d Driver) Confirm(ctx context.Context, scope string) Result {
	timing := d.Timing.withDefaults()
	logger := ports.LoggerOrNop(d.Logger)

	label := d.ConfirmLabel
	if label == nil {
		label = DefaultConfirmLabel
	}
	el, ok := d.findControl(ctx, scope, label, ports.RoleConfirm)
	if !ok {
		return NotFound
	}
	if err := d.Host.Activate(ctx, scope, el.Ref); err != nil {
		logger.Printf("interact: confirm activate failed: %v", err)
		return NotFound
	}

	signal := d.SuccessSignal
	if signal == nil {
		signal = DefaultSuccessSignal
	}
	budget := PollBudget{Interval: timing.PollInterval, MaxAttempts: timing.ConfirmAttempts, DelayFirst: true}
	confirmed := Poll(ctx, budget, func(ctx context.Context) bool {
		text, err := d.Host.ScopeText(ctx, scope)
		if err != nil {
			return false
		}
		return signal.MatchString(text)
	})
	if !confirmed {
		return TimedOut
	}
	return Success
}

// Close dismisses the surface on a best-effort basis and never fails.
func (d Driver) Close(ctx context.Context, scope string) {
	logger := ports.LoggerOrNop(d.Logger)
	label := d.CloseLabel
	if label == nil {
		label = DefaultCloseLabel
	}
	if el, ok := d.findControl(ctx, scope, label, ports.RoleClose); ok {
		err := d.Host.Activate(ctx, scope, el.Ref)
		if err == nil {
			return
		}
		logger.Printf("interact: close activate failed: %v", err)
	}
	if err := d.Host.Detach(ctx, scope); err != nil {
		logger.Printf("interact: detach %q failed: %v", scope, err)
	}
}

func (d Driver) isOpen(ctx context.Context) bool {
	_, ok, err := d.Host.OpenScope(ctx)
	return err == nil && ok
}

// findControl looks for a labelled button first, then for a control whose
// role alone identifies it.
func (d Driver) findControl(ctx context.Context, scope string, label *regexp.Regexp, fallback ports.ElementRole) (ports.Element, bool) {
	elements, err := d.Host.Query(ctx, scope, ports.RoleButton, fallback)
	if err != nil {
		ports.LoggerOrNop(d.Logger).Printf("interact: query controls in %q failed: %v", scope, err)
		return ports.Element{}, false
	}
	buttons := make([]ports.Element, 0, len(elements))
	controls := make([]ports.Element, 0)
	for _, el := range elements {
		switch el.Role {
		case ports.RoleButton:
			el.Text = strings.TrimSpace(el.Text)
			buttons = append(buttons, el)
		case fallback:
			controls = append(controls, el)
		}
	}
	for _, el := range buttons {
		if label.MatchString(el.Text) {
			return el, true
		}
	}
	if len(controls) > 0 {
		return controls[0], true
	}
	return ports.Element{}, false
}
