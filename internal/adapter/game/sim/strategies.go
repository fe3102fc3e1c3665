package sim

import (
	"regexp"

	"autoupgrader/internal/app/interact"
	"autoupgrader/internal/app/ports"
)

var (
	fortressIconPattern  = regexp.MustCompile(`(?i)mountainfortress`)
	fortressLabelPattern = regexp.MustCompile(`(?i)mountain\s*fortress`)
)

// Strategies lists the ways to open the fortress panel, most reliable first:
// the navigation command, the nav icon, then any control labelled with the
// panel's name.
func Strategies(f *Fortress) []interact.OpenStrategy {
	return []interact.OpenStrategy{
		interact.ViaCommand("menu", f.OpenMenu),
		interact.ViaElement("icon", []ports.ElementRole{ports.RoleIcon}, interact.ContentPattern(fortressIconPattern)),
		interact.ViaElement("label", []ports.ElementRole{ports.RoleButton},
			interact.ContentPattern(fortressLabelPattern),
			interact.FuzzyLabel(FortressTitle, 2),
		),
	}
}
