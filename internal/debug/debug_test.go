package debug

import (
	"context"
	"log/slog"
	"testing"
)

func TestWithDebug(t *testing.T) {
	ctx := WithDebug(context.Background(), true)
	if !IsEnabled(ctx) {
		t.Error("IsEnabled should return true when debug is enabled")
	}
}

func TestIsEnabled_DefaultFalse(t *testing.T) {
	ctx := context.Background()
	if IsEnabled(ctx) {
		t.Error("IsEnabled should return false by default")
	}
}

func TestWithDebug_Disabled(t *testing.T) {
	ctx := WithDebug(context.Background(), false)
	if IsEnabled(ctx) {
		t.Error("IsEnabled should return false when debug is disabled")
	}
}

func TestSetupLogger_DebugEnabled(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	shutdown := SetupLogger(true)
	defer func() { _ = shutdown() }()

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("SetupLogger(true) should enable debug level logging")
	}
}

func TestSetupLogger_DebugDisabled(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	shutdown := SetupLogger(false)
	defer func() { _ = shutdown() }()

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("SetupLogger(false) should disable debug level logging")
	}
	if slog.Default().Enabled(context.Background(), slog.LevelInfo) {
		t.Error("SetupLogger(false) should disable info level logging")
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("SetupLogger(false) should enable warn level logging")
	}
}

func TestFallbackLogger(t *testing.T) {
	if !FallbackLogger(true).Enabled(context.Background(), slog.LevelDebug) {
		t.Error("FallbackLogger(true) should enable debug level logging")
	}
	if FallbackLogger(false).Enabled(context.Background(), slog.LevelInfo) {
		t.Error("FallbackLogger(false) should disable info level logging")
	}
}
