package notify

import (
	"context"

	"autoupgrader/internal/app/ports"
)

// Fanout delivers to every notifier. A panicking notifier does not stop the
// rest.
type Fanout []ports.Notifier

func (f Fanout) Notify(ctx context.Context, level ports.Level, message string) {
	for _, n := range f {
		if n == nil {
			continue
		}
		deliver(ctx, n, level, message)
	}
}

func deliver(ctx context.Context, n ports.Notifier, level ports.Level, message string) {
	defer func() { _ = recover() }()
	n.Notify(ctx, level, message)
}
