package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewFormat(t *testing.T) {
	tests := []struct {
		name   string
		format string
		tty    bool
		json   bool
	}{
		{"tty default", "", true, false},
		{"pipe default", "", false, true},
		{"forced json", "json", true, true},
		{"forced text", "text", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(&buf, "info", tt.format, tt.tty).Info("hello", "order_id", 7)
			gotJSON := strings.HasPrefix(buf.String(), "{")
			if gotJSON != tt.json {
				t.Errorf("json = %v, want %v (output %q)", gotJSON, tt.json, buf.String())
			}
			if !strings.Contains(buf.String(), "order_id") {
				t.Errorf("output %q missing attribute", buf.String())
			}
		})
	}
}

func TestNewLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "text", false)
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Error("warn record missing")
	}
}
