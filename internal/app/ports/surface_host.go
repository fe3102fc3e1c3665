package ports

import "context"

// RootScope addresses the host's navigation chrome outside any open panel.
const RootScope = ""

type ElementRole string

const (
	RolePortrait ElementRole = "portrait"
	RoleButton   ElementRole = "button"
	RoleIcon     ElementRole = "icon"
	RoleConfirm  ElementRole = "confirm"
	RoleClose    ElementRole = "close"
)

type Element struct {
	Ref    string
	Role   ElementRole
	DataID string
	Text   string
	Markup string
}

// SurfaceHost is the only touchpoint with the rendered game UI.
type SurfaceHost interface {
	OpenScope(ctx context.Context) (scope string, ok bool, err error)
	Query(ctx context.Context, scope string, roles ...ElementRole) ([]Element, error)
	Activate(ctx context.Context, scope string, ref string) error
	ScopeText(ctx context.Context, scope string) (string, error)
	Detach(ctx context.Context, scope string) error
}
