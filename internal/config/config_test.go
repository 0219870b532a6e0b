package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"surfacegate/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if len(cfg.Engines) != 1 || cfg.Engines[0].Name != "surface" {
		t.Fatalf("unexpected default engines: %+v", cfg.Engines)
	}
	if cfg.Manifest.FetchTimeout != 8 || cfg.Poller.Interval != 2 || cfg.Poller.Budget != 300 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadParsesEngines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
api_bind = "127.0.0.1:0"

[[engine]]
name = "Surface"
base_url = "http://engine-a:8092/"

[[engine]]
name = "heightmap"
service = "heightmap-engine"
base_url = "http://engine-b:8093"
public_prefix = "/assets/heightmap/"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected resolved existing path, got %q exists=%v", resolved, exists)
	}
	if len(cfg.Engines) != 2 {
		t.Fatalf("expected 2 engines, got %d", len(cfg.Engines))
	}
	first := cfg.Engines[0]
	if first.Name != "surface" {
		t.Errorf("engine name not lower-cased: %q", first.Name)
	}
	if first.BaseURL != "http://engine-a:8092" {
		t.Errorf("base_url not trimmed: %q", first.BaseURL)
	}
	if first.PublicPrefix != "/assets/surface" {
		t.Errorf("public_prefix not defaulted from name: %q", first.PublicPrefix)
	}
	if first.Service != "surface-engine" {
		t.Errorf("service not defaulted: %q", first.Service)
	}
	second := cfg.Engines[1]
	if second.PublicPrefix != "/assets/heightmap" {
		t.Errorf("public_prefix trailing slash kept: %q", second.PublicPrefix)
	}

	if _, ok := cfg.EngineByName("heightmap"); !ok {
		t.Error("EngineByName failed for heightmap")
	}
	if _, ok := cfg.EngineByName("nope"); ok {
		t.Error("EngineByName matched unknown engine")
	}
}

func TestLoadRejectsDuplicateEngineNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[[engine]]
name = "surface"
base_url = "http://a:1"

[[engine]]
name = "surface"
base_url = "http://b:2"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil || !strings.Contains(err.Error(), "duplicate engine") {
		t.Fatalf("expected duplicate engine error, got %v", err)
	}
}

func TestLoadRejectsBadEngineURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[[engine]]
name = "surface"
base_url = "engine:8092"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for non-http base_url")
	}
}

func TestAPITokenFromEnvironment(t *testing.T) {
	t.Setenv(config.EnvAPIToken, "env-secret")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Paths.APIToken != "env-secret" {
		t.Fatalf("expected env token, got %q", cfg.Paths.APIToken)
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := os.WriteFile(path, []byte(config.SampleConfig()), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}
