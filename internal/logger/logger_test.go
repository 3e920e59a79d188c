package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWritesToFile(t *testing.T) {
	defer Close()
	path := filepath.Join(t.TempDir(), "nested", "aichat.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Info("catalog loaded with %d models", 6)
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "catalog loaded with 6 models") {
		t.Errorf("log file missing message:\n%s", data)
	}
}

func TestDebugLevelToggle(t *testing.T) {
	defer Close()
	defer SetDebug(false)

	var buf bytes.Buffer
	InitWriter(&buf)

	SetDebug(false)
	Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug message written at info level")
	}

	SetDebug(true)
	Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("debug message missing at debug level")
	}
}

func TestWarnAndError(t *testing.T) {
	defer Close()
	var buf bytes.Buffer
	InitWriter(&buf)

	Warn("catalog unavailable: %v", "boom")
	Error("submit failed")
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "catalog unavailable: boom") {
		t.Errorf("missing warn line:\n%s", out)
	}
	if !strings.Contains(out, "level=ERROR") {
		t.Errorf("missing error line:\n%s", out)
	}
}

func TestCloseDiscards(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	Close()
	Info("after close")
	if buf.Len() != 0 {
		t.Errorf("output after Close: %q", buf.String())
	}
}
