package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: false, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("quota read", "remaining", 3)
	Info("scan saved")
	Warn("history write failed", "key", "scan_history")
	Error("analysis failed")

	data, err := os.ReadFile(Path(configDir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "history write failed") || !strings.Contains(text, "analysis failed") {
		t.Errorf("warnings and errors should reach the log file:\n%s", text)
	}
	if strings.Contains(text, "quota read") || strings.Contains(text, "scan saved") {
		t.Errorf("debug and info should be filtered outside debug mode:\n%s", text)
	}
}

func TestInitDebugMode(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: true, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}

	Debug("debug line")

	data, err := os.ReadFile(Path(configDir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "debug line") {
		t.Error("debug messages should be written in debug mode")
	}
}

func TestPath(t *testing.T) {
	got := Path("/home/u/.config/detoxscan")
	want := filepath.Join("/home/u/.config/detoxscan", "logs", "detoxscan.log")
	if got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	Debug("dropped")
	Info("dropped")
	Warn("dropped")
	Error("dropped")
}
