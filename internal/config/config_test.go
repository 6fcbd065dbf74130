package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
broker:
  subject: "lab.camera.trigger"
analysis:
  flow_addresses: ["192.168.1.20"]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Broker.Subject != "lab.camera.trigger" {
		t.Errorf("explicit value overridden: %q", cfg.Broker.Subject)
	}
	if cfg.Broker.URL == "" || cfg.Broker.OnWord != "true" || cfg.Broker.OffWord != "false" {
		t.Errorf("broker defaults not applied: %+v", cfg.Broker)
	}
	if cfg.Broker.IntervalOnMillis != 5000 || cfg.Broker.IntervalOffMillis != 10000 {
		t.Errorf("interval defaults not applied: %+v", cfg.Broker)
	}
	if cfg.Analysis.StartTolerance != "10s" || cfg.Analysis.ConnTolerance != "30s" {
		t.Errorf("tolerance defaults not applied: %+v", cfg.Analysis)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log defaults not applied: %+v", cfg.Log)
	}
}

func TestLoadConfig_InvalidRejected(t *testing.T) {
	path := writeConfig(t, `
broker:
  interval_on_ms: -5
`)
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for negative interval")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
