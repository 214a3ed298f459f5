package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger adapts a zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZap wraps an existing zap logger.
func NewZap(z *zap.Logger) Logger {
	return &zapLogger{sugar: z.Sugar()}
}

// NewFileLogger builds a JSON zap logger writing to path. Full-screen TUIs own
// the terminal, so their diagnostics go here instead of stderr.
// The returned close func flushes and should be deferred by the caller.
func NewFileLogger(path string, debug bool) (Logger, func(), error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return NewZap(z), func() { _ = z.Sync() }, nil
}

func (l *zapLogger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *zapLogger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *zapLogger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *zapLogger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
