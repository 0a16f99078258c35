package server

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if _, err := os.Stat(filepath.Join(dir, configFileName)); err != nil {
		t.Errorf("config file not written: %v", err)
	}

	// Second load reads the file it just wrote.
	again, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("second LoadConfig failed: %v", err)
	}
	if again != cfg {
		t.Errorf("reloaded cfg = %+v, want %+v", again, cfg)
	}
}

func TestLoadConfig_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	content := `{"rate_limits":{"read_rate_per_min":10,"write_rate_per_min":5,"burst":2},"max_request_body_bytes":1024}`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.RateLimits.ReadRatePerMin != 10 || cfg.RateLimits.WriteRatePerMin != 5 ||
		cfg.RateLimits.Burst != 2 || cfg.MaxRequestBodyBytes != 1024 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	for name, content := range map[string]string{
		"malformed":    `{`,
		"negativeRate": `{"rate_limits":{"read_rate_per_min":-1}}`,
		"negativeBody": `{"max_request_body_bytes":-1}`,
	} {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(dir); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
