package engine

import charmLog "github.com/charmbracelet/log"

// charmLogger adapts a charm logger to Logger.
type charmLogger struct {
	l *charmLog.Logger
}

func (c charmLogger) Debug(msg string, keyvals ...any) { c.l.Debug(msg, keyvals...) }
func (c charmLogger) Info(msg string, keyvals ...any)  { c.l.Info(msg, keyvals...) }
func (c charmLogger) Warn(msg string, keyvals ...any)  { c.l.Warn(msg, keyvals...) }
func (c charmLogger) Error(msg string, keyvals ...any) { c.l.Error(msg, keyvals...) }

// FromCharm wraps l so it can be passed to WithLogger.
func FromCharm(l *charmLog.Logger) Logger {
	if l == nil {
		l = charmLog.Default()
	}
	return charmLogger{l: l}
}
