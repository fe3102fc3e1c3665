package notify

import (
	"context"

	"autoupgrader/internal/app/ports"
)

// Log writes every notification as "[level] message".
type Log struct {
	Logger ports.Logger
}

func (n Log) Notify(_ context.Context, level ports.Level, message string) {
	ports.LoggerOrNop(n.Logger).Printf("[%s] %s", level, message)
}
