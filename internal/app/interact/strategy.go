package interact

import (
	"context"
	"fmt"

	"autoupgrader/internal/app/ports"
)

// OpenStrategy is one independent way to make the upgrade surface appear.
// Trigger reports whether it managed to fire its action at all.
type OpenStrategy interface {
	Name() string
	Trigger(ctx context.Context, host ports.SurfaceHost) (bool, error)
}

type commandStrategy struct {
	name string
	fn   func(ctx context.Context) (bool, error)
}

func ViaCommand(name string, fn func(ctx context.Context) (bool, error)) OpenStrategy {
	return commandStrategy{name: name, fn: fn}
}

func (s commandStrategy) Name() string { return s.name }

func (s commandStrategy) Trigger(ctx context.Context, _ ports.SurfaceHost) (bool, error) {
	if s.fn == nil {
		return false, nil
	}
	return s.fn(ctx)
}

type elementStrategy struct {
	name     string
	roles    []ports.ElementRole
	matchers []Matcher
}

// ViaElement activates the first root-scope element accepted by matchers.
func ViaElement(name string, roles []ports.ElementRole, matchers ...Matcher) OpenStrategy {
	return elementStrategy{name: name, roles: roles, matchers: matchers}
}

func (s elementStrategy) Name() string { return s.name }

func (s elementStrategy) Trigger(ctx context.Context, host ports.SurfaceHost) (bool, error) {
	elements, err := host.Query(ctx, ports.RootScope, s.roles...)
	if err != nil {
		return false, fmt.Errorf("query root: %w", err)
	}
	el, _, ok := Resolve(elements, s.matchers...)
	if !ok {
		return false, nil
	}
	if err := host.Activate(ctx, ports.RootScope, el.Ref); err != nil {
		return false, fmt.Errorf("activate %s: %w", el.Ref, err)
	}
	return true, nil
}
