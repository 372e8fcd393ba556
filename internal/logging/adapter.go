package logging

import "log/slog"

// Adapter exposes a slog.Logger through the Debug/Info/Error interface taken
// by the transform and loader packages.
type Adapter struct {
	l *slog.Logger
}

// New wraps l. A nil l follows the package default, including later Configure calls.
func New(l *slog.Logger) *Adapter {
	return &Adapter{l: l}
}

// With returns an Adapter that adds args to every record.
func (a *Adapter) With(args ...any) *Adapter {
	return &Adapter{l: a.logger().With(args...)}
}

func (a *Adapter) logger() *slog.Logger {
	if a.l != nil {
		return a.l
	}
	return L()
}

func (a *Adapter) Debug(msg string, keysAndValues ...interface{}) {
	a.logger().Debug(msg, keysAndValues...)
}

func (a *Adapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger().Info(msg, keysAndValues...)
}

func (a *Adapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger().Error(msg, keysAndValues...)
}
