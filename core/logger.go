package core

// Logger is any leveled logger that can also report to an external error tracker.
type Logger interface {
	Enable(enabled bool)

	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
