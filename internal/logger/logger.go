package logger

import (
  "fmt"

  "go.uber.org/zap"
)

// Logger is a thin wrapper around a zap sugared logger so callers can carry
// key/value context with With(...) without importing zap everywhere.
type Logger struct {
  sugar *zap.SugaredLogger
}

// New builds a logger for the given mode: "development" or "production".
func New(mode string) (*Logger, error) {
  var zl *zap.Logger
  var err error
  switch mode {
  case "", "development":
    zl, err = zap.NewDevelopment()
  case "production":
    zl, err = zap.NewProduction()
  default:
    return nil, fmt.Errorf("unknown log mode: '%s'", mode)
  }
  if err != nil {
    return nil, err
  }
  return &Logger{sugar: zl.Sugar()}, nil
}

func (l *Logger) With(keysAndValues ...interface{}) *Logger {
  return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
  l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
  l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
  l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
  l.sugar.Errorw(msg, keysAndValues...)
}

func (l *Logger) Sync() error {
  return l.sugar.Sync()
}
