package app

import (
	"log/slog"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.FallbackStatus != 200 {
		t.Errorf("expected default fallback 200, got %d", cfg.FallbackStatus)
	}
	if cfg.RootDir != "" {
		t.Error("seeding should be disabled by default")
	}
	if cfg.TraceSize <= 0 {
		t.Error("trace buffer must have capacity")
	}
	if cfg.ShutdownTimeout <= 0 {
		t.Error("shutdown timeout must be positive")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelDebug},
		{"", slog.LevelDebug},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
