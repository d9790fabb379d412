package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:3000" || cfg.API.Version != "v1" {
		t.Fatalf("api = %+v", cfg.API)
	}
	if cfg.API.MaxConcurrency != 8 || cfg.Display.PollIntervalSec != 60 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
api:
  base_url: https://api.example.com
  max_concurrency: -3
web:
  base_url: https://tasks.example.com
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKBOARD_API_VERSION", "v2")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.com" || cfg.Web.BaseURL != "https://tasks.example.com" {
		t.Fatalf("urls = %q %q", cfg.API.BaseURL, cfg.Web.BaseURL)
	}
	if cfg.API.Version != "v2" {
		t.Fatalf("version = %q", cfg.API.Version)
	}
	if cfg.API.MaxConcurrency != 8 {
		t.Fatalf("max concurrency = %d", cfg.API.MaxConcurrency)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.API.BaseURL = "https://api.example.com"
	cfg.Display.PollIntervalSec = 15

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.API.BaseURL != cfg.API.BaseURL || got.Display.PollIntervalSec != 15 {
		t.Fatalf("got = %+v", got)
	}
}
