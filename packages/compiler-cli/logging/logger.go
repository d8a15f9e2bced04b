// Package logging provides the logger collaborator used while linking.
//
// The Logger interface uses key-value pairs in the style of zap's
// SugaredLogger, so any structured logger can be adapted to it.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel is the minimum severity a Logger emits.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// ParseLogLevel maps "debug", "info", "warn" and "error" to a LogLevel.
// Unknown names fall back to LogLevelInfo.
func ParseLogLevel(name string) LogLevel {
	switch name {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogLevelDebug:
		return zapcore.DebugLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger receives diagnostics emitted while linking.
// Fields are key-value pairs: key1, value1, key2, value2, ...
type Logger interface {
	Level() LogLevel
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

type zapLogger struct {
	level  LogLevel
	logger *zap.SugaredLogger
}

// FromZap adapts a zap SugaredLogger. A nil logger yields a no-op Logger.
func FromZap(logger *zap.SugaredLogger, level LogLevel) Logger {
	if logger == nil {
		return NewNopLogger()
	}
	return &zapLogger{level: level, logger: logger}
}

// NewConsoleLogger writes human readable lines to stderr.
func NewConsoleLogger(level LogLevel) Logger {
	config := zap.NewDevelopmentEncoderConfig()
	config.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(config),
		zapcore.AddSync(os.Stderr),
		level.zapLevel(),
	)
	return FromZap(zap.New(core).Sugar(), level)
}

// NewJSONLogger writes structured JSON using zap's production configuration.
func NewJSONLogger(level LogLevel) (Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level.zapLevel())
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return FromZap(logger.Sugar(), level), nil
}

// NewNopLogger discards everything.
func NewNopLogger() Logger {
	return FromZap(zap.NewNop().Sugar(), LogLevelError)
}

func (z *zapLogger) Level() LogLevel {
	return z.level
}

func (z *zapLogger) Debug(msg string, fields ...interface{}) {
	z.logger.Debugw(msg, fields...)
}

func (z *zapLogger) Info(msg string, fields ...interface{}) {
	z.logger.Infow(msg, fields...)
}

func (z *zapLogger) Warn(msg string, fields ...interface{}) {
	z.logger.Warnw(msg, fields...)
}

func (z *zapLogger) Error(msg string, fields ...interface{}) {
	z.logger.Errorw(msg, fields...)
}
