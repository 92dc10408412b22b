package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{" WARN ", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFileLoggerWritesComponentPrefix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "distcache.log")
	logger, err := NewFileLogger(ComponentCache, path, false, zapcore.InfoLevel)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	logger.ComponentInfo(ComponentOlric, "node ready")
	logger.ComponentDebug(ComponentOlric, "filtered out")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "[OLRIC] node ready") {
		t.Errorf("log missing component prefix: %q", out)
	}
	if strings.Contains(out, "filtered out") {
		t.Errorf("debug line written at info level: %q", out)
	}
}
