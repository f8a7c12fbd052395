// Package debug provides context-based debug mode with structured logging.
package debug

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const debugKey contextKey = "debug_enabled"

// ShutdownFunc flushes buffered log output.
type ShutdownFunc func() error

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugKey, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(debugKey).(bool); ok {
		return v
	}
	return false
}

// SetupLogger installs a zap-backed slog default logger writing to stderr.
// Debug mode lowers the level to debug and switches to console encoding;
// otherwise only warnings and errors are logged, as JSON.
func SetupLogger(debugEnabled bool) ShutdownFunc {
	logger, shutdown, err := NewLogger(debugEnabled)
	if err != nil {
		logger = FallbackLogger(debugEnabled)
		shutdown = func() error { return nil }
	}
	slog.SetDefault(logger)
	return shutdown
}

// NewLogger builds the zap core and wraps it in a slog.Logger.
func NewLogger(debugEnabled bool) (*slog.Logger, ShutdownFunc, error) {
	logConfig := zap.NewProductionConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debugEnabled {
		logConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		logConfig.Encoding = "console"
	}
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logConfig.OutputPaths = []string{"stderr"}
	logConfig.ErrorOutputPaths = []string{"stderr"}
	logConfig.Sampling = nil

	zapLog, err := logConfig.Build()
	if err != nil {
		return nil, nil, err
	}
	core := zapLog.Core()
	shutdown := func() error {
		// Syncing stderr fails on some terminals; nothing is lost.
		_ = core.Sync()
		return nil
	}
	return slog.New(zapslog.NewHandler(core, zapslog.WithCaller(debugEnabled))), shutdown, nil
}

// FallbackLogger is a plain slog text logger for when zap cannot start.
func FallbackLogger(debugEnabled bool) *slog.Logger {
	level := slog.LevelWarn
	if debugEnabled {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
