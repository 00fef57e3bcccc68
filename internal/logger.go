package internal

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger      = newLogger(atomicLevel)
)

func newLogger(level zap.AtomicLevel) *zap.SugaredLogger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core).Sugar()
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	atomicLevel.SetLevel(level.zapLevel())
}

// CurrentLogLevel reports the level the logger is gating at
func CurrentLogLevel() LogLevel {
	return fromZapLevel(atomicLevel.Level())
}

func fromZapLevel(l zapcore.Level) LogLevel {
	switch {
	case l <= zapcore.DebugLevel:
		return LogLevelDebug
	case l == zapcore.InfoLevel:
		return LogLevelInfo
	case l == zapcore.WarnLevel:
		return LogLevelWarn
	default:
		return LogLevelError
	}
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// Logger exposes the underlying structured logger for callers that want fields.
func Logger() *zap.SugaredLogger {
	return logger
}

// SyncLogger flushes buffered log entries; call before exit.
func SyncLogger() {
	_ = logger.Sync()
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l LogLevel) String() string {
	return l.zapLevel().String()
}

// ParseLogLevel maps a config string ("debug", "info", "warn", "error") to a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return LogLevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return fromZapLevel(lvl), nil
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}
