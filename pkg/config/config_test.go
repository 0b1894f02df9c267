package config

import (
	"os"
	"path/filepath"
	"testing"
)

const minimalYAML = `
bridges:
  regions:
    - region_short: sct
      region_name: St. Catharines
      endpoint: https://example.com/sct
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, minimalYAML)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Timezone != "America/Toronto" {
		t.Errorf("expected default timezone, got %q", cfg.Timezone)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.RateLimit.DataPerMinute != 60 || cfg.RateLimit.StaticPerMinute != 30 {
		t.Errorf("expected default rate limits 60/30, got %d/%d", cfg.RateLimit.DataPerMinute, cfg.RateLimit.StaticPerMinute)
	}
	if cfg.AISHubEnabled() {
		t.Error("expected AISHub disabled with no api key configured")
	}
}

func TestLoadRejectsEmptyRegions(t *testing.T) {
	path := writeTempConfig(t, "environment: production\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a config with no bridge regions")
	}
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	path := writeTempConfig(t, minimalYAML+"\ntimezone: Nowhere/Fake\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unrecognized timezone")
	}
}

func TestLoadRejectsUDPEnabledWithoutPort(t *testing.T) {
	path := writeTempConfig(t, minimalYAML+"\nais:\n  udp_enabled: true\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error when ais.udp_enabled is set without a port")
	}
}

func TestAISHubEnabledReflectsAPIKey(t *testing.T) {
	path := writeTempConfig(t, minimalYAML+"\nais:\n  aishub_api_key: secret\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.AISHubEnabled() {
		t.Error("expected AISHub enabled when an api key is configured")
	}
}
