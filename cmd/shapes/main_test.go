package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voice-shapes/config"
)

func testConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := config.Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return cfg
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_MissingAPIKey(t *testing.T) {
	cfg := testConfig(t, "{}")

	err := run(context.Background(), cfg, discard())
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Errorf("got %v, want missing API key error", err)
	}
}

func TestRun_ReturnsSourceFailureWithTracingEnabled(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	cfg := testConfig(t, `
openai:
  api_key: sk-test
audio:
  source: file
  file_dir: `+filepath.Join(blocker, "audio")+`
tracing:
  enabled: true
  endpoint: 127.0.0.1:1
  insecure: true
`)

	err := run(context.Background(), cfg, discard())
	if err == nil || !strings.Contains(err.Error(), "starting audio") {
		t.Errorf("got %v, want audio start failure", err)
	}
}

func TestRun_HTTPStopsOnCancel(t *testing.T) {
	cfg := testConfig(t, "openai:\n  api_key: sk-test\nhttp:\n  addr: \"127.0.0.1:0\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := run(ctx, cfg, discard()); err != nil {
		t.Errorf("run error: %v", err)
	}
}

func TestSetupLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		logger := setupLogger(config.LogConfig{Level: tt.level, Format: "json"})
		if !logger.Enabled(context.Background(), tt.want) {
			t.Errorf("level %q: %v should be enabled", tt.level, tt.want)
		}
		if tt.want > slog.LevelDebug && logger.Enabled(context.Background(), tt.want-1) {
			t.Errorf("level %q: below %v should be disabled", tt.level, tt.want)
		}
	}
}
