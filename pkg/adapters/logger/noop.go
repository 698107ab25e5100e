package logger

import "github.com/user/heiftile/pkg/ports"

// NoopLogger discards all messages. It backs the quiet log level and
// library callers that do not pass a logger.
type NoopLogger struct{}

// NewNoop creates a new no-op logger.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

func (l *NoopLogger) Debug(msg string, args ...interface{}) {}
func (l *NoopLogger) Info(msg string, args ...interface{})  {}
func (l *NoopLogger) Warn(msg string, args ...interface{})  {}
func (l *NoopLogger) Error(msg string, args ...interface{}) {}

// WithComponent returns the same no-op logger.
func (l *NoopLogger) WithComponent(component string) ports.Logger {
	return l
}

// New returns a console logger for level, or a NoopLogger for LevelQuiet.
func New(level ports.LogLevel) ports.Logger {
	if level == ports.LevelQuiet {
		return NewNoop()
	}
	return NewConsole(level)
}

var _ ports.Logger = (*NoopLogger)(nil)
