package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"plateocr/internal/config"
	"strings"
	"testing"
)

func TestConsoleLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger(&buf)

	l.Info("loaded %d labels", 36)
	l.Warning("falling back to %s", "alphabet")
	l.Error("inference failed")

	out := buf.String()
	for _, want := range []string{"INFO", "loaded 36 labels", "WARNING", "falling back to alphabet", "ERROR", "inference failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got: %s", want, out)
		}
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Errorf("Expected caller file in output, got: %s", out)
	}
}

func TestNewLogger_WritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l := NewLogger(&config.Config{LogDirectory: dir})

	l.Info("hello")
	l.Error("boom")

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	if err != nil {
		t.Fatalf("Failed to read info.log: %v", err)
	}
	if !strings.Contains(string(info), "hello") {
		t.Errorf("info.log missing entry: %s", info)
	}

	errLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	if err != nil {
		t.Fatalf("Failed to read error.log: %v", err)
	}
	if !strings.Contains(string(errLog), "boom") {
		t.Errorf("error.log missing entry: %s", errLog)
	}

	if err := l.CleanLogs("error.log"); err != nil {
		t.Fatalf("CleanLogs failed: %v", err)
	}
	errLog, _ = os.ReadFile(filepath.Join(dir, "error.log"))
	if len(errLog) != 0 {
		t.Errorf("Expected error.log to be empty, got: %s", errLog)
	}
}

func TestCleanLogs_ConsoleOnly(t *testing.T) {
	l := NewConsoleLogger(&bytes.Buffer{})
	if err := l.CleanLogs("info.log"); err != nil {
		t.Errorf("Expected no error for console logger, got %v", err)
	}
}
