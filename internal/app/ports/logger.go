package ports

type Logger interface {
	Printf(format string, args ...any)
}

type NopLogger struct{}

func (NopLogger) Printf(string, ...any) {}

func LoggerOrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
