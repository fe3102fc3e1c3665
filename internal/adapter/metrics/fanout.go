package metrics

import (
	"time"

	"autoupgrader/internal/app/ports"
)

// Fanout records each outcome in every recorder.
type Fanout []ports.UpgradeMetrics

func (f Fanout) RecordOutcome(outcome ports.Outcome, elapsed time.Duration) {
	for _, m := range f {
		if m != nil {
			m.RecordOutcome(outcome, elapsed)
		}
	}
}
