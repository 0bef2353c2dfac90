package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write config.yaml: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "input:\n  path: app_2.log\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Input.Path != "app_2.log" {
		t.Fatalf("expected input path app_2.log, got %q", cfg.Input.Path)
	}
	if cfg.Dedup.WindowSeconds != 60 {
		t.Fatalf("expected default dedup window 60, got %d", cfg.Dedup.WindowSeconds)
	}
	if cfg.Recorder.PerStateLimit != 1000 {
		t.Fatalf("expected default per-state limit 1000, got %d", cfg.Recorder.PerStateLimit)
	}
	if cfg.Anomaly.MinRatio != 10 {
		t.Fatalf("expected default anomaly ratio 10, got %d", cfg.Anomaly.MinRatio)
	}
	if cfg.UI.Mode != "headless" {
		t.Fatalf("expected default ui mode headless, got %q", cfg.UI.Mode)
	}
	if cfg.Logging.RetentionDays != 7 {
		t.Fatalf("expected default retention 7 days, got %d", cfg.Logging.RetentionDays)
	}
}

func TestLoadParsesSections(t *testing.T) {
	path := writeConfig(t, `feed:
  enabled: true
  host: telemetry.example.net
  port: 7300
dedup:
  enabled: true
  window_seconds: 30
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Feed.Enabled || cfg.Feed.Host != "telemetry.example.net" || cfg.Feed.Port != 7300 {
		t.Fatalf("unexpected feed config: %+v", cfg.Feed)
	}
	if !cfg.FollowMode() {
		t.Fatalf("expected follow mode when the feed is enabled")
	}
	if cfg.Dedup.WindowSeconds != 30 {
		t.Fatalf("expected dedup window 30, got %d", cfg.Dedup.WindowSeconds)
	}
}

func TestLoadRejectsNegativeWindow(t *testing.T) {
	path := writeConfig(t, "dedup:\n  window_seconds: -1\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected Load() to fail for negative dedup.window_seconds")
	}
}

func TestLoadRejectsIncompleteFeed(t *testing.T) {
	path := writeConfig(t, "feed:\n  enabled: true\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected Load() to fail when feed host/port are missing")
	}
}

func TestLoadRejectsRecorderWithoutPath(t *testing.T) {
	path := writeConfig(t, "recorder:\n  enabled: true\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected Load() to fail when recorder path is missing")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected Load() to fail for a missing file")
	}
}

func TestDefaultMatchesLoadedDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Dedup.WindowSeconds != 60 || cfg.UI.Mode != "headless" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.FollowMode() {
		t.Fatalf("defaults must not enable follow mode")
	}
}
