// Package logger holds the process-wide zap logger. Packages log through
// logger.Log with explicit fields, or through the sugared helpers when a
// call site only has loose key/value pairs.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.Logger

var sugar *zap.SugaredLogger

func init() {
	// keep a usable logger before Init runs (tests, tools)
	Log = zap.NewNop()
	sugar = Log.Sugar()
}

// Init builds the global logger. Level and format come from the arguments;
// empty values fall back to BURROW_LOG_LEVEL / BURROW_LOG_FORMAT and then
// to info/console.
func Init(level, format string) error {
	lvl := strings.ToLower(strings.TrimSpace(level))
	if lvl == "" {
		lvl = strings.ToLower(strings.TrimSpace(os.Getenv("BURROW_LOG_LEVEL")))
	}
	var zl zapcore.Level
	switch lvl {
	case "debug":
		zl = zapcore.DebugLevel
	case "warn", "warning":
		zl = zapcore.WarnLevel
	case "error":
		zl = zapcore.ErrorLevel
	default:
		zl = zapcore.InfoLevel
	}

	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.ToLower(strings.TrimSpace(os.Getenv("BURROW_LOG_FORMAT")))
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zl)
	if f != "json" {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = l
	sugar = l.Sugar()
	return nil
}

// Sync flushes buffered log entries; safe to call at shutdown.
func Sync() {
	_ = Log.Sync()
}

// Debug logs with loose key/value pairs.
func Debug(msg string, kv ...any) { sugar.Debugw(msg, kv...) }

// Info logs with loose key/value pairs.
func Info(msg string, kv ...any) { sugar.Infow(msg, kv...) }

// Warn logs with loose key/value pairs.
func Warn(msg string, kv ...any) { sugar.Warnw(msg, kv...) }

// Error logs with loose key/value pairs.
func Error(msg string, kv ...any) { sugar.Errorw(msg, kv...) }
