package interact

import (
	"context"
	"time"
)

type PollBudget struct {
	Interval    time.Duration
	MaxAttempts int
	// DelayFirst waits one interval before the first check.
	DelayFirst bool
}

// Poll evaluates cond up to MaxAttempts times, Interval apart, and reports
// whether it ever held. A cancelled context ends the poll as a miss.
func Poll(ctx context.Context, budget PollBudget, cond func(context.Context) bool) bool {
	attempts := budget.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if budget.DelayFirst || i > 0 {
			if err := Wait(ctx, budget.Interval); err != nil {
				return false
			}
		}
		if cond(ctx) {
			return true
		}
	}
	return false
}

// Wait sleeps for d unless ctx ends first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
