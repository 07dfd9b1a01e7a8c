package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, "warn", "API")

	logger.Info("hidden")
	logger.Warn("shown", "status", 503)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "API") || !strings.Contains(out, "503") {
		t.Errorf("warn line missing fields: %q", out)
	}
}

func TestNewWriterBadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, "chatty", "")
	logger.Debug("debug line")
	logger.Info("info line")
	if strings.Contains(buf.String(), "debug line") || !strings.Contains(buf.String(), "info line") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, closer := New(Options{File: path, Level: "debug"})
	logger.Debug("written to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file = %q", data)
	}
}
