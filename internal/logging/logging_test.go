package logging

import (
	"path/filepath"
	"testing"
)

func TestInitAndLog(t *testing.T) {
	if err := Init("debug", ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Debug("debug %d", 1)
	Info("info %s", "msg")
	Warn("warn")
	Error("error")
	Sync()
}

func TestInitWithFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "pngraw.log")
	if err := Init("info", logFile); err != nil {
		t.Fatalf("Init with file failed: %v", err)
	}
	Info("written to file")
	Sync()
}

func TestInitBadLevel(t *testing.T) {
	if err := Init("loud", ""); err == nil {
		t.Error("expected error for unknown level")
	}
}
