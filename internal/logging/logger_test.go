package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")
	path := filepath.Join(t.TempDir(), "out.log")

	if err := Initialize("", path); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	Info("should not be written")
	Sync()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no log file, stat err = %v", err)
	}
}

func TestInitialize_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "out.log")

	if err := Initialize("debug", path); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	Debug("request submitted", zap.String("slot", "records"))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "request submitted") || !strings.Contains(string(data), "records") {
		t.Errorf("log output missing entry: %s", data)
	}
}

func TestInitialize_FromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")
	path := filepath.Join(t.TempDir(), "out.log")

	if err := Initialize("", path); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	Info("filtered out")
	Warn("kept")
	Sync()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "filtered out") {
		t.Error("info entry written at warn level")
	}
	if !strings.Contains(string(data), "kept") {
		t.Error("warn entry missing")
	}
}

func TestInitialize_InvalidLevel(t *testing.T) {
	if err := Initialize("loud", filepath.Join(t.TempDir(), "out.log")); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
