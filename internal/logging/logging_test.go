package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "taskboard.log")

	closer, err := Setup(path, "debug")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})

	log.WithField("project_id", "42").Debug("loaded topics")
	if err := closer.Close(); err != nil {
		t.Fatalf("closing log file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "loaded topics") || !strings.Contains(string(data), "project_id=42") {
		t.Fatalf("unexpected log contents: %s", data)
	}
}

func TestSetupBadLevelFallsBackToInfo(t *testing.T) {
	closer, err := Setup("", "loud")
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer closer.Close()
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	if log.GetLevel() != log.InfoLevel {
		t.Fatalf("level = %v, want info", log.GetLevel())
	}
}
