package ports

import "time"

type Outcome string

const (
	OutcomeSuccess            Outcome = "success"
	OutcomePartial            Outcome = "partial"
	OutcomeSurfaceUnavailable Outcome = "surface_unavailable"
	OutcomeError              Outcome = "error"
	OutcomeSkipped            Outcome = "skipped"
)

type UpgradeMetrics interface {
	RecordOutcome(outcome Outcome, elapsed time.Duration)
}
