package sim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"autoupgrader/internal/app/ports"
	"autoupgrader/internal/domain/bestiary"
)

const (
	FortressScope = "mountain-fortress"
	FortressTitle = "Mountain Fortress"

	refNavIcon    = "nav-fortress-icon"
	refNavButton  = "nav-fortress"
	refNavMarket  = "nav-market"
	refUpgrade    = "fortress-upgrade"
	refClose      = "fortress-close"
	portraitRefPx = "portrait-"
)

var ErrScopeDetached = errors.New("scope not rendered")

type FortressOptions struct {
	// RenderDelay is how long the panel takes to appear after an open request.
	RenderDelay time.Duration
	// ResultDelay is how long the confirmation text takes to appear.
	ResultDelay time.Duration
	// NavLabel overrides the visible label of the navigation button.
	NavLabel    string
	DisableMenu bool
	HideIcon    bool
	Now         func() time.Time
}

// Fortress emulates the game's upgrade panel over a Collection.
type Fortress struct {
	collection *Collection
	opts       FortressOptions

	mu          sync.Mutex
	requestedAt time.Time
	requested   bool
	base        string
	fodder      []string
	result      string
	resultAt    time.Time
}

func NewFortress(collection *Collection, opts FortressOptions) *Fortress {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if strings.TrimSpace(opts.NavLabel) == "" {
		opts.NavLabel = FortressTitle
	}
	return &Fortress{collection: collection, opts: opts}
}

// OpenMenu is the in-game navigation command. It reports false when the
// command is unavailable.
func (f *Fortress) OpenMenu(_ context.Context) (bool, error) {
	if f.opts.DisableMenu {
		return false, nil
	}
	f.requestOpen()
	return true, nil
}

func (f *Fortress) OpenScope(_ context.Context) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.renderedLocked() {
		return "", false, nil
	}
	return FortressScope, true, nil
}

func (f *Fortress) Query(ctx context.Context, scope string, roles ...ports.ElementRole) ([]ports.Element, error) {
	var elements []ports.Element
	switch scope {
	case ports.RootScope:
		elements = f.rootElements()
	case FortressScope:
		f.mu.Lock()
		rendered := f.renderedLocked()
		base := f.base
		f.mu.Unlock()
		if !rendered {
			return nil, fmt.Errorf("query %q: %w", scope, ErrScopeDetached)
		}
		snapshot, err := f.collection.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		elements = panelElements(snapshot, base)
	default:
		return nil, fmt.Errorf("query %q: %w", scope, ErrScopeDetached)
	}
	return filterRoles(elements, roles), nil
}

func (f *Fortress) Activate(_ context.Context, scope string, ref string) error {
	switch scope {
	case ports.RootScope:
		switch ref {
		case refNavButton:
			f.requestOpen()
			return nil
		case refNavIcon:
			if f.opts.HideIcon {
				return fmt.Errorf("activate %s: %w", ref, ports.ErrNotFound)
			}
			f.requestOpen()
			return nil
		case refNavMarket:
			return nil
		}
		return fmt.Errorf("activate %s: %w", ref, ports.ErrNotFound)
	case FortressScope:
		return f.activatePanel(ref)
	}
	return fmt.Errorf("activate %q: %w", scope, ErrScopeDetached)
}

func (f *Fortress) ScopeText(_ context.Context, scope string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if scope != FortressScope || !f.renderedLocked() {
		return "", fmt.Errorf("text %q: %w", scope, ErrScopeDetached)
	}
	text := FortressTitle
	if f.result != "" && !f.opts.Now().Before(f.resultAt) {
		text += "\n" + f.result
	}
	return text, nil
}

func (f *Fortress) Detach(_ context.Context, scope string) error {
	if scope != FortressScope {
		return fmt.Errorf("detach %q: %w", scope, ErrScopeDetached)
	}
	f.close()
	return nil
}

// Selection reports the current base and fodder picks.
func (f *Fortress) Selection() (string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.base, append([]string{}, f.fodder...)
}

func (f *Fortress) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requested
}

func (f *Fortress) activatePanel(ref string) error {
	f.mu.Lock()
	rendered := f.renderedLocked()
	f.mu.Unlock()
	if !rendered {
		return fmt.Errorf("activate %s: %w", ref, ErrScopeDetached)
	}
	switch {
	case ref == refClose:
		f.close()
		return nil
	case ref == refUpgrade:
		return f.confirm()
	case strings.HasPrefix(ref, portraitRefPx):
		return f.pick(strings.TrimPrefix(ref, portraitRefPx))
	}
	return fmt.Errorf("activate %s: %w", ref, ports.ErrNotFound)
}

// pick makes the first portrait the base and every later one fodder.
func (f *Fortress) pick(instanceID string) error {
	snapshot, err := f.collection.Snapshot(context.Background())
	if err != nil {
		return err
	}
	if _, ok := snapshot.Find(instanceID); !ok {
		return fmt.Errorf("portrait %s: %w", instanceID, ports.ErrNotFound)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.base == "" {
		f.base = instanceID
		return nil
	}
	if instanceID == f.base {
		return nil
	}
	for _, id := range f.fodder {
		if id == instanceID {
			return nil
		}
	}
	f.fodder = append(f.fodder, instanceID)
	return nil
}

func (f *Fortress) confirm() error {
	f.mu.Lock()
	base, fodder := f.base, append([]string{}, f.fodder...)
	f.mu.Unlock()

	message := "Select a base and at least one fodder"
	if base != "" && len(fodder) > 0 {
		upgraded, err := f.collection.Upgrade(base, fodder)
		if err != nil {
			message = "Upgrade failed: " + err.Error()
		} else {
			message = fmt.Sprintf("Upgraded! Tier up to %d", upgraded.Tier)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.base, f.fodder = "", nil
	f.result = message
	f.resultAt = f.opts.Now().Add(f.opts.ResultDelay)
	return nil
}

func (f *Fortress) requestOpen() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requested {
		return
	}
	f.requested = true
	f.requestedAt = f.opts.Now()
}

func (f *Fortress) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = false
	f.base, f.fodder = "", nil
	f.result = ""
}

func (f *Fortress) renderedLocked() bool {
	return f.requested && !f.opts.Now().Before(f.requestedAt.Add(f.opts.RenderDelay))
}

func (f *Fortress) rootElements() []ports.Element {
	out := []ports.Element{
		{Ref: refNavMarket, Role: ports.RoleButton, Text: "Market"},
		{Ref: refNavButton, Role: ports.RoleButton, Text: f.opts.NavLabel},
	}
	if !f.opts.HideIcon {
		out = append(out, ports.Element{
			Ref:    refNavIcon,
			Role:   ports.RoleIcon,
			Markup: `<img src="/assets/icons/mountainfortress.png" alt="">`,
		})
	}
	return out
}

func panelElements(snapshot bestiary.Snapshot, base string) []ports.Element {
	out := make([]ports.Element, 0, len(snapshot)+2)
	for _, e := range snapshot {
		markup := fmt.Sprintf(`<div class="monster-portrait" data-instance="%s" data-species="%d">`, e.InstanceID, e.SpeciesID)
		if e.InstanceID == base {
			markup = strings.Replace(markup, `class="monster-portrait"`, `class="monster-portrait selected"`, 1)
		}
		out = append(out, ports.Element{
			Ref:    portraitRefPx + e.InstanceID,
			Role:   ports.RolePortrait,
			DataID: e.InstanceID,
			Text:   fmt.Sprintf("T%d Lv %d", e.EffectiveTier(), e.EffectiveLevel()),
			Markup: markup,
		})
	}
	out = append(out,
		ports.Element{Ref: refUpgrade, Role: ports.RoleButton, Text: "Upgrade"},
		ports.Element{Ref: refClose, Role: ports.RoleClose, Text: "Close"},
	)
	return out
}

func filterRoles(elements []ports.Element, roles []ports.ElementRole) []ports.Element {
	if len(roles) == 0 {
		return elements
	}
	out := make([]ports.Element, 0, len(elements))
	for _, el := range elements {
		for _, role := range roles {
			if el.Role == role {
				out = append(out, el)
				break
			}
		}
	}
	return out
}
