package interact

import (
	"context"
	"errors"
	"sync"
	"time"

	"autoupgrader/internal/app/ports"
)

func fastTiming() Timing {
	return Timing{PollInterval: time.Millisecond, OpenAttempts: 3, ConfirmAttempts: 3}
}

type stubHost struct {
	mu            sync.Mutex
	open          bool
	openChecks    int
	elements      map[string][]ports.Element
	queryErr      error
	activateErr   map[string]error
	activated     []string
	onActivate    map[string]func(h *stubHost)
	text          string
	detached      bool
	detachErr     error
	openScopeName string
}

func newStubHost() *stubHost {
	return &stubHost{
		elements:      map[string][]ports.Element{},
		activateErr:   map[string]error{},
		onActivate:    map[string]func(h *stubHost){},
		openScopeName: "panel",
	}
}

func (h *stubHost) OpenScope(_ context.Context) (string, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.openChecks++
	if !h.open {
		return "", false, nil
	}
	return h.openScopeName, true, nil
}

func (h *stubHost) Query(_ context.Context, scope string, roles ...ports.ElementRole) ([]ports.Element, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.queryErr != nil {
		return nil, h.queryErr
	}
	out := []ports.Element{}
	for _, el := range h.elements[scope] {
		if len(roles) == 0 {
			out = append(out, el)
			continue
		}
		for _, role := range roles {
			if el.Role == role {
				out = append(out, el)
				break
			}
		}
	}
	return out, nil
}

func (h *stubHost) Activate(_ context.Context, _ string, ref string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.activateErr[ref]; err != nil {
		return err
	}
	h.activated = append(h.activated, ref)
	if fn := h.onActivate[ref]; fn != nil {
		fn(h)
	}
	return nil
}

func (h *stubHost) ScopeText(_ context.Context, _ string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.text, nil
}

func (h *stubHost) Detach(_ context.Context, _ string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.detachErr != nil {
		return h.detachErr
	}
	h.detached = true
	h.open = false
	return nil
}

func (h *stubHost) activatedRefs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.activated...)
}

var errHostDown = errors.New("host down")
