package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	l := Get()
	if l == nil {
		t.Fatal("logger is nil after initialization")
	}

	named := Named("test")
	if named == nil {
		t.Fatal("named logger is nil")
	}
}

func TestLoggerFields(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	l := Get().Named("fields")

	// These should not panic regardless of field shapes.
	l.Debug(ctx, "debug message", String("key", "value"))
	l.Info(ctx, "info message", Int("count", 3), Float64("ratio", 0.5))
	l.Warn(ctx, "warn message", Any("payload", map[string]int{"a": 1}))
	l.Error(ctx, "error message", Error(nil))
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	for _, level := range []string{"debug", "info", "warn", "warning", "error", "DEBUG", ""} {
		if err := SetLevelString(level); err != nil {
			t.Errorf("SetLevelString(%q) returned error: %v", level, err)
		}
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}

	SetLevel(slog.LevelInfo)
}
