package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"focuslog/internal/platform/config"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	vault := t.TempDir()
	cfg, err := config.New(vault)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.StateDir != filepath.Join(vault, ".focuslog") || cfg.DBPath != filepath.Join(vault, ".focuslog", "focuslog.db") {
		t.Fatalf("unexpected paths: %+v", cfg)
	}
	if cfg.Insight.Provider != "gemini" || cfg.Insight.CacheTTL != 30*time.Minute || cfg.Insight.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected insight defaults: %+v", cfg.Insight)
	}
	if !cfg.Notify.Enabled || cfg.Log.Level != "warn" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestNewReadsConfigFile(t *testing.T) {
	t.Parallel()
	vault := t.TempDir()
	stateDir := filepath.Join(vault, ".focuslog")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	raw := "timezone: UTC\nlog:\n  level: debug\ninsight:\n  provider: coach\n  cache_ttl: 5m\nnotify:\n  enabled: false\n"
	if err := os.WriteFile(filepath.Join(stateDir, "config.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.New(vault)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Insight.Provider != "coach" || cfg.Insight.CacheTTL != 5*time.Minute || cfg.Log.Level != "debug" || cfg.Notify.Enabled {
		t.Fatalf("config file not applied: %+v", cfg)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("expected UTC, got %v err=%v", loc, err)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	t.Parallel()
	if _, err := config.New("  "); err == nil {
		t.Fatalf("empty vault path must fail")
	}
	if _, err := (config.Config{Timezone: "Mars/Olympus"}).Location(); err == nil {
		t.Fatalf("unknown timezone must fail")
	}
}
