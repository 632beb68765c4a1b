package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KIRAYE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("poll interval = %s, want 5s", cfg.PollInterval)
	}
	if cfg.PollMaxAttempts != 60 {
		t.Fatalf("poll max attempts = %d, want 60", cfg.PollMaxAttempts)
	}
	if cfg.BaseURL == "" || cfg.DataDir == "" {
		t.Fatalf("missing defaults: %+v", cfg)
	}
	if cfg.MetricsEnabled {
		t.Fatal("metrics must default to disabled for a CLI")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("KIRAYE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("KIRAYE_BASE_URL", "https://api.kiraye.example/api/")
	t.Setenv("KIRAYE_POLL_INTERVAL", "2s")
	t.Setenv("KIRAYE_POLL_MAX_ATTEMPTS", "10")
	t.Setenv("KIRAYE_METRICS_ENABLED", "true")
	t.Setenv("KIRAYE_ENVIRONMENT", "staging")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://api.kiraye.example/api/" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
	if cfg.PollInterval != 2*time.Second || cfg.PollMaxAttempts != 10 {
		t.Fatalf("poll settings = %s/%d", cfg.PollInterval, cfg.PollMaxAttempts)
	}
	if !cfg.MetricsEnabled || cfg.Environment != "staging" {
		t.Fatalf("metrics/environment = %v/%q", cfg.MetricsEnabled, cfg.Environment)
	}
}

func TestLoadAccumulatesInvalidEnvValues(t *testing.T) {
	t.Setenv("KIRAYE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("KIRAYE_POLL_INTERVAL", "soon")
	t.Setenv("KIRAYE_POLL_MAX_ATTEMPTS", "-3")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid env values")
	}
	msg := err.Error()
	if !strings.Contains(msg, "KIRAYE_POLL_INTERVAL") || !strings.Contains(msg, "KIRAYE_POLL_MAX_ATTEMPTS") {
		t.Fatalf("error must name every invalid variable, got: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "base_url: https://file.kiraye.example/api/\npoll_interval: 3s\ndevserver_verify_after: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KIRAYE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://file.kiraye.example/api/" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
	if cfg.PollInterval != 3*time.Second || cfg.DevVerifyAfter != 5 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestEnvBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("base_url: https://file.kiraye.example/api/\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KIRAYE_CONFIG", path)
	t.Setenv("KIRAYE_BASE_URL", "https://env.kiraye.example/api/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://env.kiraye.example/api/" {
		t.Fatalf("base url = %q, env must win over the file", cfg.BaseURL)
	}
}

func TestLoadRejectsMalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("base_url: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KIRAYE_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
