// Where: internal/infra/config/global_test.go
// What: Tests for global config load/save.
// Why: Ensure defaults survive partial files and round-trips are lossless.
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGlobalConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := GlobalConfig{
		Version:            1,
		Manifest:           "/srv/cargo/cargo-manifest.yml",
		Oracle:             OracleDocker,
		InsecureRegistries: []string{"localhost:5000"},
		Report:             Report{S3: "s3://ci/cargo.json", S3Endpoint: "http://minio:9000"},
	}

	if err := SaveGlobalConfig(path, cfg); err != nil {
		t.Fatalf("save global config: %v", err)
	}
	loaded, err := LoadGlobalConfig(path)
	if err != nil {
		t.Fatalf("load global config: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("manifest: m.yml\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadGlobalConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Oracle != OracleRegistry || cfg.Version != 1 || cfg.Manifest != "m.yml" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if diff := cmp.Diff(DefaultGlobalConfig(), cfg); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsUnknownOracle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("oracle: crystal-ball\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadGlobalConfig(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
