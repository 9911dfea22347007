package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"WARNING", LevelWarn},
		{"WARN", LevelWarn},
		{"ERROR", LevelError},
		{"FATAL", LevelError},
		{"nonsense", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != FormatJSON {
		t.Error("Expected FormatJSON for 'json'")
	}
	if ParseFormat("JSON") != FormatJSON {
		t.Error("Expected FormatJSON for 'JSON'")
	}
	if ParseFormat("text") != FormatText {
		t.Error("Expected FormatText for 'text'")
	}
	if ParseFormat("") != FormatText {
		t.Error("Expected FormatText default")
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARNING"},
		{LevelError, "ERROR"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level(%d).String() = %s, want %s", tt.level, got, tt.expected)
		}
	}
}

func TestGetBeforeInit(t *testing.T) {
	// Must never return nil, even before Init
	log := Get()
	if log == nil {
		t.Fatal("Get returned nil")
	}

	// And must be safe to use
	log.Info("message before init")
	log.With("key", "value").Debug("child logger before init")
}

func TestInitAndShutdown(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "cachereport.log")

	err := Init(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		File: FileConfig{
			Enabled:   true,
			Path:      logPath,
			MaxSizeMB: 10,
		},
	})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Shutdown()

	Get().Info("test record", "component", "test")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "test record") {
		t.Error("Log file does not contain the record")
	}
	if !strings.Contains(string(data), `"component":"test"`) {
		t.Error("Log file does not contain the bound attribute")
	}
}

func TestInitTwice(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "a.log")
	cfg := Config{
		Level: LevelInfo,
		File:  FileConfig{Enabled: true, Path: logPath},
	}

	if err := Init(cfg); err != nil {
		t.Fatalf("First Init failed: %v", err)
	}
	defer Shutdown()

	if err := Init(cfg); err == nil {
		t.Error("Expected error on second Init without Shutdown")
	}
}

func TestSlogLoggerLevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "filtered.log")

	log, err := NewSlogLogger(Config{
		Level: LevelWarn,
		File:  FileConfig{Enabled: true, Path: logPath},
	})
	if err != nil {
		t.Fatalf("NewSlogLogger failed: %v", err)
	}

	log.Debug("dropped debug")
	log.Info("dropped info")
	log.Warn("kept warn")
	log.Shutdown()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "dropped debug") || strings.Contains(content, "dropped info") {
		t.Error("Records below the configured level were not filtered")
	}
	if !strings.Contains(content, "kept warn") {
		t.Error("Warn record is missing")
	}
}

func TestNullLogger(t *testing.T) {
	var log Logger = &NullLogger{}
	log.Debug("a")
	log.Info("b")
	log.Warn("c")
	log.Error("d")
	if log.With("k", "v") == nil {
		t.Error("With returned nil")
	}
	if err := log.Shutdown(); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
