package ports

import "context"

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier is fire-and-forget; display failures stay inside the implementation.
type Notifier interface {
	Notify(ctx context.Context, level Level, message string)
}
