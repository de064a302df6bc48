// Where: internal/infra/config/global.go
// What: Global config load/save.
// Why: Keep per-user defaults (manifest, oracle, registries, report targets) out of every command line.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru-code/cargo-builder/internal/meta"
	"gopkg.in/yaml.v3"
)

// Oracle backends.
const (
	OracleRegistry = "registry"
	OracleDocker   = "docker"
)

// GlobalConfig represents ~/.config/build-cargo/config.yaml.
type GlobalConfig struct {
	Version            int      `yaml:"version"`
	Manifest           string   `yaml:"manifest,omitempty"`
	Oracle             string   `yaml:"oracle,omitempty"`
	InsecureRegistries []string `yaml:"insecure_registries,omitempty"`
	Report             Report   `yaml:"report,omitempty"`
}

// Report holds default report destinations.
type Report struct {
	JSON       string `yaml:"json,omitempty"`
	S3         string `yaml:"s3,omitempty"`
	S3Endpoint string `yaml:"s3_endpoint,omitempty"`
}

// DefaultGlobalConfig returns an initialized GlobalConfig with version set.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{Version: 1, Oracle: OracleRegistry}
}

// GlobalConfigPath returns the config file location under the user config dir.
func GlobalConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, meta.ConfigDir, meta.ConfigFile), nil
}

// LoadGlobalConfig reads and parses the global configuration file.
func LoadGlobalConfig(path string) (GlobalConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return GlobalConfig{}, fmt.Errorf("read global config: %w", err)
	}

	cfg := DefaultGlobalConfig()
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return GlobalConfig{}, fmt.Errorf("decode global config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return GlobalConfig{}, fmt.Errorf("global config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault returns the defaults when path does not exist.
func LoadOrDefault(path string) (GlobalConfig, error) {
	cfg, err := LoadGlobalConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultGlobalConfig(), nil
	}
	return cfg, err
}

// SaveGlobalConfig writes a GlobalConfig to the specified path.
func SaveGlobalConfig(path string, cfg GlobalConfig) error {
	payload, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode global config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create global config dir: %w", err)
	}

	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("write global config: %w", err)
	}
	return nil
}

// Validate checks enumerated fields.
func (c GlobalConfig) Validate() error {
	switch strings.TrimSpace(c.Oracle) {
	case "", OracleRegistry, OracleDocker:
		return nil
	default:
		return fmt.Errorf("unknown oracle %q (want %s or %s)", c.Oracle, OracleRegistry, OracleDocker)
	}
}
